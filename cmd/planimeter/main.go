// Command planimeter measures the perimeter and area of geodesic
// polygons.
//
// It reads vertices, one "lat lon" pair in degrees per line; a blank or
// unparseable line closes the current polygon and prints
//
//	count perimeter area
//
// with the perimeter in meters and the area in square meters.  A
// trailing polygon is closed at end of input.  With --polyline the
// vertices describe a path instead and only its length is reported.
// With --geojson the input is a GeoJSON document and one result line is
// printed per polygon ring or line string.
//
// Input comes from stdin, --input-file, or --input-string (with ";"
// separating lines).  Flags can also be set through the environment with
// a PLANIMETER_ prefix, e.g. PLANIMETER_GEOJSON=true.
package main

import (
	"bufio"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geodetics/geodesic"
	"github.com/geodetics/geodesic/cmd/internal/toolio"
)

var opt struct {
	reverse    bool
	sign       bool
	polyline   bool
	geojson    bool
	ellipsoid  toolio.Ellipsoid
	inputFile  string
	inputText  string
	outputFile string
}

var conf = viper.New()

var cmd = &cobra.Command{
	Use:   "planimeter",
	Short: "Measure the perimeter and area of geodesic polygons",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			glog.Errorf("planimeter: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	flags := cmd.Flags()
	flags.BoolVarP(&opt.reverse, "reverse", "r", false,
		"count a clockwise traversal as a positive area")
	flags.BoolVarP(&opt.sign, "sign", "s", true,
		"report a signed area for polygons traversed in the \"wrong\" direction")
	flags.BoolVarP(&opt.polyline, "polyline", "l", false,
		"treat the vertices as a polyline and report only its length")
	flags.BoolVar(&opt.geojson, "geojson", false,
		"read a GeoJSON document instead of lat lon lines")
	toolio.RegisterEllipsoid(flags, &opt.ellipsoid)
	flags.StringVar(&opt.inputFile, "input-file", "", "read input from this file instead of stdin")
	flags.StringVar(&opt.inputText, "input-string", "", "read input from this string, with \";\" separating lines")
	flags.StringVar(&opt.outputFile, "output-file", "", "write output to this file instead of stdout")
	flags.AddGoFlagSet(goflag.CommandLine)

	conf.BindPFlags(flags)
	conf.SetEnvPrefix("PLANIMETER")
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
	opt.reverse = conf.GetBool("reverse")
	opt.sign = conf.GetBool("sign")
	opt.polyline = conf.GetBool("polyline")
	opt.geojson = conf.GetBool("geojson")
	opt.inputFile = conf.GetString("input-file")
	opt.inputText = conf.GetString("input-string")
	opt.outputFile = conf.GetString("output-file")
	if s := conf.GetString("ellipsoid"); s != "" {
		if err := opt.ellipsoid.Set(s); err != nil {
			return err
		}
	}

	e, err := geodesic.NewEllipsoid(opt.ellipsoid.A, opt.ellipsoid.F)
	if err != nil {
		return err
	}
	glog.V(1).Infof("ellipsoid a=%g f=%g area=%g", e.Radius(), e.Flattening(), e.EllipsoidArea())

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

	if opt.geojson {
		return measureGeoJSON(e, in, w)
	}
	return measureLines(e, in, w)
}

// measureLines accumulates lat lon lines into polygons and reports each
// one as it closes.
func measureLines(e *geodesic.Ellipsoid, in io.Reader, w *bufio.Writer) error {
	poly := e.PolygonInit(opt.polyline)
	flush := func() error {
		count, perimeter, area := poly.Compute(opt.reverse, opt.sign)
		poly.Clear()
		if count == 0 {
			return nil
		}
		return report(w, count, perimeter, area, opt.polyline)
	}
	err := toolio.EachLine(in, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			lat, errLat := strconv.ParseFloat(fields[0], 64)
			lon, errLon := strconv.ParseFloat(fields[1], 64)
			if errLat == nil && errLon == nil {
				poly.AddPoint(lat, lon)
				return nil
			}
		}
		// A blank or unparseable line closes the current polygon.
		return flush()
	})
	if err != nil {
		return err
	}
	return flush()
}

func report(w *bufio.Writer, count int, perimeter, area float64, polyline bool) error {
	var err error
	if polyline {
		_, err = fmt.Fprintf(w, "%d %.8f\n", count, perimeter)
	} else {
		_, err = fmt.Fprintf(w, "%d %.8f %.3f\n", count, perimeter, area)
	}
	return err
}
