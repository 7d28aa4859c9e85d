// Package toolio carries the input/output plumbing shared by the command
// line tools: ellipsoid flag parsing and line-oriented file handling.
package toolio

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/geodetics/geodesic"
)

// Ellipsoid is a pflag value holding an equatorial radius and flattening
// given on the command line as "a,f".
type Ellipsoid struct {
	A float64 // equatorial radius (meters)
	F float64 // flattening, or its reciprocal
}

// RegisterEllipsoid registers the --ellipsoid/-e flag on fs, defaulting
// to the WGS84 parameters.
func RegisterEllipsoid(fs *pflag.FlagSet, v *Ellipsoid) {
	v.A, v.F = geodesic.WGS84A, geodesic.WGS84F
	fs.VarP(v, "ellipsoid", "e",
		`ellipsoid as "a,f": equatorial radius in meters and flattening (or its reciprocal)`)
}

func (e *Ellipsoid) String() string {
	return strconv.FormatFloat(e.A, 'g', -1, 64) + "," +
		strconv.FormatFloat(e.F, 'g', -1, 64)
}

// Set parses an "a,f" pair.
func (e *Ellipsoid) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return errors.Errorf(`expected "a,f", got %q`, s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return errors.Wrapf(err, "bad equatorial radius %q", parts[0])
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return errors.Wrapf(err, "bad flattening %q", parts[1])
	}
	e.A, e.F = a, f
	return nil
}

// Type reports the flag value type for help output.
func (e *Ellipsoid) Type() string { return "a,f" }

// Input returns the line source selected by the --input-file and
// --input-string flags: the named file, the literal string with ";"
// separators turned into newlines, or stdin.  Closing the returned
// reader never closes stdin.
func Input(file, text string) (io.ReadCloser, error) {
	if file != "" && text != "" {
		return nil, errors.New("cannot specify --input-string and --input-file together")
	}
	if file == "-" {
		file = ""
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open %s for reading", file)
		}
		return f, nil
	}
	if text != "" {
		return io.NopCloser(strings.NewReader(strings.ReplaceAll(text, ";", "\n"))), nil
	}
	return io.NopCloser(os.Stdin), nil
}

// Output returns the sink selected by the --output-file flag; stdout if
// the flag is empty or "-".  Closing the returned writer never closes
// stdout.
func Output(file string) (io.WriteCloser, error) {
	if file == "" || file == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s for writing", file)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// EachLine calls fn for every line of r, empty lines included.
func EachLine(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(sc.Err(), "reading input")
}
