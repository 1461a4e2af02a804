// Binary dc6web serves the frames of the DC6 files in a directory over HTTP.
package main

import (
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"

	"badc0de.net/pkg/go-dc6/encode"
	"badc0de.net/pkg/go-dc6/palette"
	"badc0de.net/pkg/go-dc6/paths"
	"badc0de.net/pkg/go-dc6/web"
)

var (
	listenAddress    = flag.String("listen_address", ":8080", "http listen address for dc6web")
	root             = flag.String("root", ".", "directory with the dc6 files to serve")
	transparentColor = flag.String("transparent_color", "transparent", "color to use as transparent")

	palettePath string
)

func main() {
	paths.SetupFilePathFlag("units.pal", "palette", &palettePath)
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	pal := palette.Default()
	if palettePath != "" {
		f, err := os.Open(palettePath)
		if err != nil {
			glog.Fatalf("error opening palette file: %v", err)
		}
		pal, err = palette.Read(f)
		f.Close()
		if err != nil {
			glog.Fatalf("error loading palette %s: %v", palettePath, err)
		}
	}
	transparent, err := encode.ParseColor(*transparentColor)
	if err != nil {
		glog.Fatalf("bad -transparent_color: %v", err)
	}

	r := mux.NewRouter()
	web.NewHandler(*root, pal, transparent).RegisterRoutes(r)
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux) // x/net/trace

	h := handlers.CombinedLoggingHandler(os.Stderr, gzhttp.GzipHandler(r))

	glog.Infof("serving %s on %s", *root, *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, h))
}
