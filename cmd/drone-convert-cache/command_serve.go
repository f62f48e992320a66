package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/drone/drone-go/plugin/converter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
	"github.com/sourceplane/drone-convert-cache/internal/config"
	"github.com/sourceplane/drone-convert-cache/internal/plugin"
	"github.com/sourceplane/drone-convert-cache/internal/rewrite"
)

var serveViper = config.NewViper()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion webhook server",
	Long: "Serve the conversion endpoint Drone calls for every build, plus /healthz and " +
		"/metrics. Every setting is also read from the CONVERTER_* environment.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func registerServeCommand(root *cobra.Command) {
	root.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", config.DefaultBind, "Address the server listens on")
	serveCmd.Flags().String("secret", "", "Shared secret for webhook signature verification")
	serveCmd.Flags().String("image", config.DefaultImage, "Container image for generated cache steps")
	serveCmd.Flags().String("cache-path", config.DefaultCachePath, "Host directory backing the shared cache volume")

	_ = serveViper.BindPFlag("bind", serveCmd.Flags().Lookup("bind"))
	_ = serveViper.BindPFlag("secret", serveCmd.Flags().Lookup("secret"))
	_ = serveViper.BindPFlag("image", serveCmd.Flags().Lookup("image"))
	_ = serveViper.BindPFlag("cache-path", serveCmd.Flags().Lookup("cache-path"))
	_ = serveViper.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
}

func serve() error {
	cfg, err := config.Load(serveViper)
	if err != nil {
		return err
	}
	if cfg.Secret == "" {
		return config.ErrSecretNotSet
	}
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rewriter := rewrite.NewRewriter(cachedir.Default(), rewrite.Params{
		Image:     cfg.Image,
		CachePath: cfg.CachePath,
		Environ:   config.EnvironMap(os.Environ()),
	})
	metrics := plugin.NewMetrics(prometheus.DefaultRegisterer)

	mux := http.NewServeMux()
	mux.Handle("/", converter.Handler(plugin.NewPlugin(rewriter, metrics), cfg.Secret, logrus.StandardLogger()))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	})

	logrus.WithFields(logrus.Fields{
		"bind":  cfg.Bind,
		"image": cfg.Image,
	}).Infoln("starting conversion server")

	return http.ListenAndServe(cfg.Bind, mux)
}
