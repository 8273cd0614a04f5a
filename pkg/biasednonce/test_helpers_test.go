package biasednonce

import (
	"bytes"
	"encoding/json"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

// fixturesDir returns the path to the fixtures directory (works regardless of test cwd).
func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

type transcriptKey struct {
	PrivateKey     *big.Int
	PeerPrivateKey *big.Int
	SharedX        *big.Int
	Flag           string
}

// loadTranscriptKey reads the secrets behind fixtures/transcript.txt.
func loadTranscriptKey(t *testing.T) transcriptKey {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixturesDir(), "transcript_key.json"))
	require.NoError(t, err)

	var raw struct {
		PrivateKey     string `json:"private_key"`
		PeerPrivateKey string `json:"peer_private_key"`
		SharedX        string `json:"shared_x"`
		Flag           string `json:"flag"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))

	parse := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok, "bad integer %q", s)
		return v
	}
	return transcriptKey{
		PrivateKey:     parse(raw.PrivateKey),
		PeerPrivateKey: parse(raw.PeerPrivateKey),
		SharedX:        parse(raw.SharedX),
		Flag:           raw.Flag,
	}
}

// seededReader returns a deterministic byte source for nonce generation.
func seededReader(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func randomKey(rng *rand.Rand, c *curve.Params) *big.Int {
	nm1 := new(big.Int).Sub(c.N, big.NewInt(1))
	d := new(big.Int).Rand(rng, nm1)
	return d.Add(d, big.NewInt(1))
}

// signPair signs the two default scenario messages with d.
func signPair(t *testing.T, c *curve.Params, d *big.Int, seed int64) (*Signature, *Signature) {
	t.Helper()
	signer := NewSigner(c).WithRand(seededReader(seed))
	scenario := DefaultScenario()
	sig1, err := signer.Sign(scenario.FirstMessage, d)
	require.NoError(t, err)
	sig2, err := signer.Sign(scenario.SecondMessage, d)
	require.NoError(t, err)
	return sig1, sig2
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
