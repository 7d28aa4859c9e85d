package toolio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/geodetics/geodesic"
)

func TestEllipsoidSet(t *testing.T) {
	var e Ellipsoid
	require.NoError(t, e.Set("6378137,298.257223563"))
	require.Equal(t, 6378137.0, e.A)
	require.Equal(t, 298.257223563, e.F)

	// Spaces around the comma are tolerated.
	require.NoError(t, e.Set("6371000, 0"))
	require.Equal(t, 6371000.0, e.A)
	require.Equal(t, 0.0, e.F)

	require.ErrorContains(t, e.Set("6378137"), `expected "a,f"`)
	require.ErrorContains(t, e.Set("1,2,3"), `expected "a,f"`)
	require.ErrorContains(t, e.Set("x,0"), "bad equatorial radius")
	require.ErrorContains(t, e.Set("1,y"), "bad flattening")

	require.Equal(t, "a,f", e.Type())
}

func TestEllipsoidStringRoundTrip(t *testing.T) {
	e := Ellipsoid{A: 6378137, F: 298.257223563}
	var e2 Ellipsoid
	require.NoError(t, e2.Set(e.String()))
	require.Equal(t, e, e2)
}

func TestRegisterEllipsoid(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var v Ellipsoid
	RegisterEllipsoid(fs, &v)
	require.Equal(t, geodesic.WGS84A, v.A)
	require.Equal(t, geodesic.WGS84F, v.F)

	require.NoError(t, fs.Parse([]string{"-e", "6371000,0"}))
	require.Equal(t, 6371000.0, v.A)
	require.Equal(t, 0.0, v.F)
}

func TestInput(t *testing.T) {
	_, err := Input("somefile", "sometext")
	require.ErrorContains(t, err, "together")

	// Literal text, with ";" as a line separator.
	in, err := Input("", "1 2;3 4")
	require.NoError(t, err)
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	require.NoError(t, in.Close())
	require.Equal(t, "1 2\n3 4", string(data))

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("5 6\n"), 0o644))
	in, err = Input(path, "")
	require.NoError(t, err)
	data, err = io.ReadAll(in)
	require.NoError(t, err)
	require.NoError(t, in.Close())
	require.Equal(t, "5 6\n", string(data))

	_, err = Input(filepath.Join(t.TempDir(), "absent"), "")
	require.ErrorContains(t, err, "cannot open")

	// "-" means stdin.
	in, err = Input("-", "")
	require.NoError(t, err)
	require.NoError(t, in.Close())
}

func TestOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	out, err := Output(path)
	require.NoError(t, err)
	_, err = io.WriteString(out, "hello\n")
	require.NoError(t, err)
	require.NoError(t, out.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))

	_, err = Output(filepath.Join(t.TempDir(), "no", "such", "dir", "f"))
	require.ErrorContains(t, err, "cannot open")

	// Stdout variants are fine to close.
	out, err = Output("")
	require.NoError(t, err)
	require.NoError(t, out.Close())
	out, err = Output("-")
	require.NoError(t, err)
	require.NoError(t, out.Close())
}

func TestEachLine(t *testing.T) {
	var lines []string
	err := EachLine(strings.NewReader("a\n\nb\n"), func(line string) error {
		lines = append(lines, line)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "", "b"}, lines)

	// A callback error stops the scan and is returned as is.
	boom := errors.New("boom")
	err = EachLine(strings.NewReader("a\nb\n"), func(line string) error {
		if line == "b" {
			return boom
		}
		return nil
	})
	require.Equal(t, boom, err)

	err = EachLine(failReader{}, func(string) error { return nil })
	require.ErrorContains(t, err, "reading input")
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}
