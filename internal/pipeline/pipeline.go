// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package pipeline wires sources, pacing queues and the broadcast hub into
// one supervised tree. Construction decides the topology; the supervisor
// owns every lifecycle after that.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/cwadley/threatcast/internal/broadcast"
	"github.com/cwadley/threatcast/internal/config"
	"github.com/cwadley/threatcast/internal/logging"
	"github.com/cwadley/threatcast/internal/pacing"
	"github.com/cwadley/threatcast/internal/simulate"
	"github.com/cwadley/threatcast/internal/source"
)

// Release intervals for the paced feeds. Bursty or high-volume sources are
// smoothed; everything else is sparse enough to go straight to the hub.
const (
	paceMalwareURL    = 1 * time.Second
	paceSSHBruteforce = 750 * time.Millisecond
	paceBGPAnomaly    = 500 * time.Millisecond
	paceCertIssued    = 500 * time.Millisecond
	paceTorRelay      = 2 * time.Second
)

// Adapter is the common surface of pollers and streamers.
type Adapter interface {
	suture.Service
	Name() string
	Simulated() bool
	State() source.State
}

// Pipeline is the assembled ingest-to-delivery graph.
type Pipeline struct {
	hub      *broadcast.Hub
	adapters []Adapter
	tree     *Tree
}

// New builds the full pipeline from configuration. Sources start in a fixed
// order so the active-sources list and log output are stable run to run.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	hub := broadcast.NewHub()
	tree := NewTree(logger, DefaultTreeConfig())

	p := &Pipeline{hub: hub, tree: tree}
	hub.SetSourceLister(p.ActiveSources)

	tree.AddDeliveryService(&hubService{hub})

	gen := simulate.New(cfg.Pipeline.SimulateSeed)
	pc := cfg.Pipeline
	src := cfg.Sources

	// Paced feeds. Each queue is its own supervised service; a queue
	// restart loses only what it had buffered.
	p.addPolled(
		forceSim(source.NewURLhaus(src.URLhaus.Cadence), pc.SimulateAll),
		p.queue("urlhaus", paceMalwareURL, pc.QueueCap), pc, gen)

	honeypot := forceSim(source.NewHoneypot(src.Honeypot.Cadence, src.Honeypot.APIKey), pc.SimulateAll)
	p.addPolled(honeypot, p.queue("honeypot", paceSSHBruteforce, pc.QueueCap), pc, gen)

	p.addPolled(
		forceSim(source.NewOnionoo(src.Onionoo.Cadence), pc.SimulateAll),
		p.queue("onionoo", paceTorRelay, pc.QueueCap), pc, gen)

	classifier := source.NewBGPClassifier(pc.BGPDropProbability, pc.SimulateSeed)
	rislive := source.NewRISLive(classifier)
	rislive.Simulated = pc.SimulateAll
	p.addStream(rislive, p.queue("rislive", paceBGPAnomaly, pc.QueueCap, pacing.BySeverity()), pc, gen)

	certstream := source.NewCertStream()
	certstream.Simulated = pc.SimulateAll
	p.addStream(certstream, p.queue("certstream", paceCertIssued, pc.QueueCap), pc, gen)

	// Sparse feeds deliver straight to the hub.
	for _, def := range []source.Definition{
		source.NewOpenPhish(src.OpenPhish.Cadence),
		source.NewFeodo(src.Feodo.Cadence),
		source.NewRansomwatch(src.Ransomwatch.Cadence),
		source.NewDefacement(src.Defacement.Cadence, src.Defacement.APIKey),
		source.NewDDoSMon(src.DDoSMon.Cadence, src.DDoSMon.APIKey),
		source.NewNVD(src.NVD.Cadence, src.NVD.APIKey),
		source.NewBreachFeed(src.BreachFeed.Cadence, src.BreachFeed.APIKey),
	} {
		p.addPolled(forceSim(def, pc.SimulateAll), hub, pc, gen)
	}

	return p
}

func forceSim(def source.Definition, all bool) source.Definition {
	def.Simulated = def.Simulated || all
	return def
}

// queue creates a pacing queue and registers it with the delivery layer.
func (p *Pipeline) queue(name string, interval time.Duration, capacity int, opts ...pacing.Option) *pacing.Queue {
	opts = append(opts, pacing.WithCapacity(capacity))
	q := pacing.New(name, interval, p.hub, opts...)
	p.tree.AddDeliveryService(q)
	return q
}

func (p *Pipeline) addPolled(def source.Definition, sink source.Sink, pc config.PipelineConfig, gen *simulate.Generator) {
	poller := source.NewPoller(def, pc.SeenSetCap, pc.FetchTimeout, gen, sink)
	p.adapters = append(p.adapters, poller)
	p.tree.AddIngestService(poller)
}

func (p *Pipeline) addStream(def source.StreamDefinition, sink source.Sink, pc config.PipelineConfig, gen *simulate.Generator) {
	streamer := source.NewStreamer(def, pc.SeenSetCap, gen, sink)
	p.adapters = append(p.adapters, streamer)
	p.tree.AddIngestService(streamer)
}

// Hub exposes the broadcaster for the HTTP layer.
func (p *Pipeline) Hub() *broadcast.Hub {
	return p.hub
}

// Tree exposes the supervision tree so main can attach the HTTP server.
func (p *Pipeline) Tree() *Tree {
	return p.tree
}

// ActiveSources lists every adapter name in startup order. Simulated
// adapters are included; an operator sees twelve sources regardless of how
// many keys are configured.
func (p *Pipeline) ActiveSources() []string {
	names := make([]string, len(p.adapters))
	for i, a := range p.adapters {
		names[i] = a.Name()
	}
	return names
}

// SourceStates snapshots every adapter's health for the status endpoint.
func (p *Pipeline) SourceStates() []source.State {
	states := make([]source.State, len(p.adapters))
	for i, a := range p.adapters {
		states[i] = a.State()
	}
	return states
}

// Serve runs the whole tree until the context is canceled.
func (p *Pipeline) Serve(ctx context.Context) error {
	logging.Info().
		Int("sources", len(p.adapters)).
		Strs("active", p.ActiveSources()).
		Msg("pipeline starting")
	return p.tree.Serve(ctx)
}

// hubService adapts the hub's RunWithContext to suture.Service.
type hubService struct {
	hub *broadcast.Hub
}

func (s *hubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *hubService) String() string { return s.hub.String() }
