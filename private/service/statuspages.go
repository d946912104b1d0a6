// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package service contains the HTTP status pages served next to the
// Prometheus metrics of the IPTV applications.
package service

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scionproto/mcastlab/pkg/log"
	"github.com/scionproto/mcastlab/pkg/private/serrors"
	"github.com/scionproto/mcastlab/private/config"
	"github.com/scionproto/mcastlab/private/env"
)

// StatusPage describes a status page.
type StatusPage struct {
	// Info is a one-line description of the page shown on the index page.
	Info string
	// Handler serves the page.
	Handler http.HandlerFunc
}

// StatusPages is a map of status pages indexed by their path without the
// leading slash, e.g. "log/level".
type StatusPages map[string]StatusPage

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{ .Name }}</title></head>
<body>
<h1>{{ .Name }}</h1>
<ul>
{{- range .Pages }}
<li><a href="/{{ .Path }}">/{{ .Path }}</a> - {{ .Info }}</li>
{{- end }}
</ul>
</body>
</html>
`))

// Register registers the pages and an index page listing them on r.
func (s StatusPages) Register(r chi.Router, name string) error {
	type entry struct {
		Path string
		Info string
	}
	var pages []entry
	for path, page := range s {
		if page.Handler == nil {
			return serrors.New("status page without handler", "path", path)
		}
		pages = append(pages, entry{Path: path, Info: page.Info})
		r.HandleFunc("/"+path, page.Handler)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct {
			Name  string
			Pages []entry
		}{Name: name, Pages: pages}
		if err := indexTmpl.Execute(w, data); err != nil {
			log.Error("Rendering status index", "err", err)
		}
	})
	return nil
}

// NewRouter creates the router serving the status pages and the metrics
// gathered from g on /metrics. Cross-origin requests are allowed from
// anywhere.
func NewRouter(name string, pages StatusPages, g prometheus.Gatherer) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
	}))
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	if err := pages.Register(r, name); err != nil {
		return nil, err
	}
	return r, nil
}

// NewConfigStatusPage returns a page displaying the TOML representation of
// cfg.
func NewConfigStatusPage(cfg any) StatusPage {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		raw, err := config.Marshal(cfg)
		if err != nil {
			http.Error(w, fmt.Sprintf("encoding config: %v", err),
				http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(raw)
	}
	return StatusPage{
		Info:    "TOML configuration",
		Handler: handler,
	}
}

// NewInfoStatusPage returns a page with build information.
func NewInfoStatusPage() StatusPage {
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, env.VersionInfo())
	}
	return StatusPage{
		Info:    "generic information about the process",
		Handler: handler,
	}
}

// NewLogLevelStatusPage returns a page that shows the console logging level
// on GET and changes it on PUT, e.g. with the body {"level":"debug"}.
func NewLogLevelStatusPage() StatusPage {
	return StatusPage{
		Info:    "logging level (supports PUT)",
		Handler: log.ConsoleLevel.ServeHTTP,
	}
}

// DefaultPages returns the pages exposed by every IPTV application.
func DefaultPages(cfg any) StatusPages {
	return StatusPages{
		"info":      NewInfoStatusPage(),
		"config":    NewConfigStatusPage(cfg),
		"log/level": NewLogLevelStatusPage(),
	}
}
