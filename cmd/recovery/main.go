// Command recovery recovers the private key behind a signing transcript and
// decrypts the flag it carries.
//
// Usage:
//
//	recovery [transcript]
//
// The transcript defaults to output.txt. Files ending in .json or .csv are
// read with the matching parser, anything else as one record per line.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/biasednonce"
)

func main() {
	source := "output.txt"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	var parser biasednonce.TranscriptParser
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		parser = &biasednonce.JSONParser{}
	case ".csv":
		parser = &biasednonce.CSVParser{}
	default:
		parser = &biasednonce.LineParser{}
	}

	client := biasednonce.NewClient().
		WithParser(parser).
		WithLogger(biasednonce.StdLogger(os.Stdout))

	fmt.Printf("Loading transcript from %s...\n", source)
	result, err := client.Run(context.Background(), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n[+] Successfully recovered private key!\n")
	fmt.Printf("    Private key: %s\n", result.PrivateKey.String())
	fmt.Printf("    Nonces: k1 = %s\n", result.Attack.K1.Text(16))
	fmt.Printf("            k2 = %s\n", result.Attack.K2.Text(16))
	if result.Verified {
		fmt.Println("    ✓ Verified against recovered public key!")
	}
	fmt.Printf("    Flag: %s\n", result.Plaintext)
}
