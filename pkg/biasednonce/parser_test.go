package biasednonce

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptParsers_AgreeOnFixture(t *testing.T) {
	fixtures := []struct {
		name   string
		parser TranscriptParser
		file   string
	}{
		{"line", &LineParser{}, "transcript.txt"},
		{"json", &JSONParser{}, "transcript.json"},
		{"csv", &CSVParser{}, "transcript.csv"},
	}

	var reference []*Entry
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			entries, err := fx.parser.ParseTranscript(filepath.Join(fixturesDir(), fx.file))
			require.NoError(t, err)
			require.Len(t, entries, 4)

			assert.Equal(t, []string{"Alice", "Bob", "Alice", "Bob"},
				[]string{entries[0].Label, entries[1].Label, entries[2].Label, entries[3].Label})
			for _, i := range []int{0, 1, 3} {
				assert.NotNil(t, entries[i].R, "record %d: r", i)
				assert.NotNil(t, entries[i].S, "record %d: s", i)
				assert.Nil(t, entries[i].Extra, "record %d: extra", i)
			}
			assert.Nil(t, entries[2].R)
			ct, err := entries[2].Ciphertext()
			require.NoError(t, err)
			assert.Len(t, ct, 32)

			if reference == nil {
				reference = entries
				return
			}
			for i := range entries {
				if entries[i].R != nil {
					assert.Equal(t, 0, entries[i].R.Cmp(reference[i].R), "record %d: r differs from line format", i)
					assert.Equal(t, 0, entries[i].S.Cmp(reference[i].S), "record %d: s differs from line format", i)
				}
			}
			assert.Equal(t, 0, entries[2].Extra.Cmp(reference[2].Extra))
		})
	}
}

func TestLineParser_BytesCiphertext(t *testing.T) {
	entries, err := (&LineParser{}).Parse(strings.NewReader("\nflag: (None, None, b'\\x01\\x02')\n\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	ct, err := entries[0].Ciphertext()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, ct)

	_, err = entries[0].Signature(nil)
	assert.ErrorIs(t, err, ErrParse)
}

func TestLineParser_Errors(t *testing.T) {
	for _, in := range []string{
		"no separator here",
		"Bob: (1, 2)",
		"Bob: (1, 2, 3",
	} {
		_, err := (&LineParser{}).Parse(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrParse, "%q", in)
	}

	_, err := (&LineParser{}).ParseTranscript(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestJSONParser_CustomFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.json")
	data := `[{"who": "Bob", "sig_r": 12345678901234567890123456789, "sig_s": "0xff", "ct": null}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	p := &JSONParser{LabelField: "who", RField: "sig_r", SField: "sig_s", ExtraField: "ct"}
	entries, err := p.ParseTranscript(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bob", entries[0].Label)
	assert.Equal(t, "12345678901234567890123456789", entries[0].R.String())
	assert.Equal(t, int64(255), entries[0].S.Int64())
	assert.Nil(t, entries[0].Extra)
}

func TestJSONParser_Errors(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"invalid.json": `[{"r": 1,`,
		"object.json":  `{"r": 1}`,
		"float.json":   `[{"r": 1.5, "s": 1}]`,
		"garbage.json": `[{"r": "xyz!", "s": 1}]`,
		"boolean.json": `[{"r": true, "s": 1}]`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
		_, err := (&JSONParser{}).ParseTranscript(path)
		assert.ErrorIs(t, err, ErrParse, name)
	}
}

func TestCSVParser_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.csv")
	require.NoError(t, os.WriteFile(path, []byte("label,r\nBob,1\n"), 0o600))
	_, err := (&CSVParser{}).ParseTranscript(path)
	assert.ErrorIs(t, err, ErrParse)
}
