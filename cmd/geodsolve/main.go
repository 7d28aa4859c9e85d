// Command geodsolve solves the direct and inverse geodesic problems in
// batch.
//
// In the default direct mode each input line is "lat1 lon1 azi1 s12"
// (degrees and meters) and the output is "lat2 lon2 azi2"; with
// --arcmode the distance is an arc length in degrees instead.  With
// --inverse each line is "lat1 lon1 lat2 lon2" and the output is
// "azi1 azi2 s12".  With --full every solved quantity is printed:
//
//	lat1 lon1 azi1 lat2 lon2 azi2 s12 a12 m12 M12 M21 S12
//
// A line that cannot be parsed or solved produces an "ERROR:" line, so
// output lines stay matched to input lines.  An inverse problem the
// solver cannot converge on (possible only for very eccentric
// ellipsoids) prints NaN fields.
//
// Angles are printed with precision+5 decimals, lengths and areas with
// precision decimals, and the scales M12 and M21 with precision+7.
// Flags can also be set through the environment with a GEODSOLVE_
// prefix.
package main

import (
	"bufio"
	goflag "flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geodetics/geodesic"
	"github.com/geodetics/geodesic/cmd/internal/toolio"
)

var opt struct {
	inverse    bool
	arcmode    bool
	full       bool
	precision  int
	ellipsoid  toolio.Ellipsoid
	inputFile  string
	inputText  string
	outputFile string
}

var conf = viper.New()

var cmd = &cobra.Command{
	Use:   "geodsolve",
	Short: "Solve direct and inverse geodesic problems",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			glog.Errorf("geodsolve: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	flags := cmd.Flags()
	flags.BoolVarP(&opt.inverse, "inverse", "i", false,
		"solve the inverse problem: input lines are lat1 lon1 lat2 lon2")
	flags.BoolVarP(&opt.arcmode, "arcmode", "a", false,
		"direct mode distance is an arc length in degrees, not meters")
	flags.BoolVarP(&opt.full, "full", "f", false,
		"print the full solution record for each line")
	flags.IntVarP(&opt.precision, "precision", "p", 3,
		"decimals for lengths; angles get 5 more")
	toolio.RegisterEllipsoid(flags, &opt.ellipsoid)
	flags.StringVar(&opt.inputFile, "input-file", "", "read input from this file instead of stdin")
	flags.StringVar(&opt.inputText, "input-string", "", "read input from this string, with \";\" separating lines")
	flags.StringVar(&opt.outputFile, "output-file", "", "write output to this file instead of stdout")
	flags.AddGoFlagSet(goflag.CommandLine)

	conf.BindPFlags(flags)
	conf.SetEnvPrefix("GEODSOLVE")
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()
}

func main() {
	// glog checks that the standard flag package has been parsed.
	_ = goflag.CommandLine.Parse(nil)
	defer glog.Flush()
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	opt.inverse = conf.GetBool("inverse")
	opt.arcmode = conf.GetBool("arcmode")
	opt.full = conf.GetBool("full")
	opt.precision = conf.GetInt("precision")
	opt.inputFile = conf.GetString("input-file")
	opt.inputText = conf.GetString("input-string")
	opt.outputFile = conf.GetString("output-file")
	if s := conf.GetString("ellipsoid"); s != "" {
		if err := opt.ellipsoid.Set(s); err != nil {
			return err
		}
	}
	if opt.precision < 0 {
		opt.precision = 0
	} else if opt.precision > 10 {
		opt.precision = 10
	}

	e, err := geodesic.NewEllipsoid(opt.ellipsoid.A, opt.ellipsoid.F)
	if err != nil {
		return err
	}
	glog.V(1).Infof("ellipsoid a=%g f=%g", e.Radius(), e.Flattening())

	in, err := toolio.Input(opt.inputFile, opt.inputText)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := toolio.Output(opt.outputFile)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	return toolio.EachLine(in, func(line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		if err := solve(e, line, w); err != nil {
			_, werr := fmt.Fprintf(w, "ERROR: %v\n", err)
			return werr
		}
		return nil
	})
}

func solve(e *geodesic.Ellipsoid, line string, w *bufio.Writer) error {
	vals, err := parseFloats(strings.Fields(line), 4)
	if err != nil {
		return err
	}
	if opt.inverse {
		mask := geodesic.Azimuth | geodesic.Distance
		if opt.full {
			mask = geodesic.All
		}
		r, err := e.Inverse(vals[0], vals[1], vals[2], vals[3], mask)
		if err != nil {
			return err
		}
		if opt.full {
			_, err = fmt.Fprintf(w, "%s %s %s %s %s %s %s %s %s %s %s %s\n",
				ang(vals[0]), ang(vals[1]), ang(r.Azi1),
				ang(vals[2]), ang(vals[3]), ang(r.Azi2),
				num(r.Distance), ang(r.ArcLength), num(r.ReducedLength),
				scale(r.M12), scale(r.M21), num(r.Area))
		} else {
			_, err = fmt.Fprintf(w, "%s %s %s\n",
				ang(r.Azi1), ang(r.Azi2), num(r.Distance))
		}
		return err
	}

	mask := geodesic.Standard
	if opt.full {
		mask = geodesic.All
	}
	var r geodesic.Result
	if opt.arcmode {
		r, err = e.ArcDirect(vals[0], vals[1], vals[2], vals[3], mask)
	} else {
		r, err = e.Direct(vals[0], vals[1], vals[2], vals[3], mask)
	}
	if err != nil {
		return err
	}
	if opt.full {
		_, err = fmt.Fprintf(w, "%s %s %s %s %s %s %s %s %s %s %s %s\n",
			ang(vals[0]), ang(vals[1]), ang(vals[2]),
			ang(r.Lat2), ang(r.Lon2), ang(r.Azi2),
			num(r.Distance), ang(r.ArcLength), num(r.ReducedLength),
			scale(r.M12), scale(r.M21), num(r.Area))
	} else {
		_, err = fmt.Fprintf(w, "%s %s %s\n",
			ang(r.Lat2), ang(r.Lon2), ang(r.Azi2))
	}
	return err
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) != n {
		return nil, errors.Errorf("expected %d fields, got %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad number %q", f)
		}
		vals[i] = v
	}
	return vals, nil
}

func ang(v float64) string   { return strconv.FormatFloat(v, 'f', opt.precision+5, 64) }
func num(v float64) string   { return strconv.FormatFloat(v, 'f', opt.precision, 64) }
func scale(v float64) string { return strconv.FormatFloat(v, 'f', opt.precision+7, 64) }
