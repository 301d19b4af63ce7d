// Command mfxvnc is a minimal RFB (VNC) server: it streams a capture
// source to any number of connecting viewers, picking changed regions
// with a configurable damage detector and framing them with a
// configurable rectangle encoder.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/y-fujii/mfxvnc/internal/config"
	"github.com/y-fujii/mfxvnc/internal/rfb"
)

func main() {
	defer glog.Flush()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		glog.Exitf("mfxvnc: %v", err)
	}

	if err := rfb.ListenAndServe(cfg); err != nil {
		glog.Exitf("mfxvnc: %v", err)
	}
}
