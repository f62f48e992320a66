package plugin

import (
	"context"
	"time"

	"github.com/drone/drone-go/drone"
	"github.com/drone/drone-go/plugin/converter"
	"github.com/sirupsen/logrus"

	"github.com/sourceplane/drone-convert-cache/internal/rewrite"
)

// Plugin answers Drone conversion requests by wrapping cache-declaring
// pipeline steps with restore and rebuild plugin steps.
type Plugin struct {
	rewriter *rewrite.Rewriter
	metrics  *Metrics
}

// NewPlugin returns a conversion plugin backed by the given rewriter.
func NewPlugin(rewriter *rewrite.Rewriter, metrics *Metrics) *Plugin {
	return &Plugin{rewriter: rewriter, metrics: metrics}
}

// Convert implements converter.Plugin. A nil config tells the Drone
// server to keep the original configuration untouched.
func (p *Plugin) Convert(ctx context.Context, req *converter.Request) (*drone.Config, error) {
	started := time.Now()

	log := logrus.WithFields(logrus.Fields{
		"repo":  req.Repo.Slug,
		"ref":   req.Build.Ref,
		"event": req.Build.Event,
	})

	res, err := p.rewriter.Rewrite(req.Config.Data)
	if err != nil {
		p.metrics.observe(statusError, time.Since(started))
		log.WithError(err).Errorln("cannot convert configuration")
		return nil, err
	}

	if res.Changed == 0 {
		p.metrics.observe(statusUnchanged, time.Since(started))
		log.Debugln("configuration unchanged")
		return nil, nil
	}

	p.metrics.observe(statusConverted, time.Since(started))
	log.WithFields(logrus.Fields{
		"documents": res.Documents,
		"pipelines": res.Changed,
	}).Infoln("converted configuration")

	return &drone.Config{Data: res.Config}, nil
}
