// Package web holds the monitoring dashboard.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevEnv names the variable that makes GetAssets read the dashboard from the
// source tree, so the page can be edited while an MMU is being served.
const DevEnv = "MMUSIM_MONITOR_DEV"

//go:embed dist
var dist embed.FS

// GetAssets returns the dashboard files, rooted at index.html.
func GetAssets() http.FileSystem {
	if devMode() {
		dir := sourceDir()
		log.Printf("Serving the dashboard from %s", dir)

		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the web package source")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevEnv))

	return err == nil && on
}
