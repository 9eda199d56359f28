package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/config"
	"github.com/nspcc-dev/tokendealer/dealer"
	"github.com/nspcc-dev/tokendealer/dispatch"
	"github.com/nspcc-dev/tokendealer/event"
	"github.com/nspcc-dev/tokendealer/ledger"
	"github.com/nspcc-dev/tokendealer/metrics"
	"github.com/nspcc-dev/tokendealer/outbox"
	"github.com/nspcc-dev/tokendealer/transport/kafka"
	"github.com/nspcc-dev/tokendealer/witness"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func nodeCommand() cli.Command {
	return cli.Command{
		Name:      "node",
		Usage:     "Run token dealer of the parachain",
		UsageText: "tokendealer node [--config <file>]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   "config, c",
				Usage:  "Path to the YAML configuration file",
				EnvVar: config.EnvPrefix + "CONFIG",
			},
		},
		Action: runNode,
	}
}

func newLogger(lvl zapcore.Level) (*zap.Logger, error) {
	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Sampling = nil

	return cc.Build()
}

func runNode(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logger.ZapLevel())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	n, err := newNode(cfg, log)
	if err != nil {
		return err
	}
	defer n.close()

	return n.run(ctx)
}

type node struct {
	log *zap.Logger
	cfg config.Config

	registry *prometheus.Registry
	ledger   *ledger.Store
	client   *kgo.Client
	consumer *kafka.Consumer
	worker   *outbox.Worker
}

func newNode(cfg config.Config, log *zap.Logger) (*node, error) {
	if !cfg.Kafka.Enabled() {
		return nil, errors.New("kafka transport is not configured")
	}

	n := &node{
		log:      log,
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
	}

	n.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(n.registry)

	st, err := ledger.OpenStorage(cfg.Ledger.DB)
	if err != nil {
		return nil, err
	}

	n.ledger, err = ledger.New(ledger.Prm{
		Logger:             log.With(zap.String("component", "ledger")),
		Storage:            st,
		ExistentialDeposit: &cfg.Ledger.ExistentialDeposit,
		AmountWidth:        cfg.Layouts.Local.AmountWidth,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	applied, err := cfg.Ledger.Genesis.Apply(n.ledger)
	if err != nil {
		n.close()
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	if applied {
		log.Info("genesis state applied",
			zap.Int("balances", len(cfg.Ledger.Genesis.Balances)), zap.Int("assets", len(cfg.Ledger.Genesis.Assets)))
	}

	n.client, err = kafka.NewClient(cfg.Kafka)
	if err != nil {
		n.close()
		return nil, fmt.Errorf("init Kafka client: %w", err)
	}

	producer := kafka.NewProducer(kafka.ProducerPrm{
		Logger:     log.With(zap.String("component", "producer")),
		Client:     n.client,
		Topics:     cfg.Kafka.Topics,
		ParaID:     cfg.ParaID,
		PeerLayout: cfg.Layouts.Parachain,
		Timeout:    cfg.Kafka.Timeout,
	})

	events := event.Tee(event.LogSink{Logger: log.With(zap.String("component", "events"))}, producer)

	var ob *outbox.Outbox
	if cfg.Outbox.Enabled {
		// ledger and outbox keys do not overlap
		ob = outbox.New(outbox.Prm{
			Logger:  log.With(zap.String("component", "outbox")),
			Storage: st,
			Metrics: m,
		})
	}

	d, err := dealer.New(dealer.Prm{
		Logger: log.With(zap.String("component", "dealer")),
		Ledger: n.ledger,
		Relay:  producer,
		Peers:  producer,
		Events: events,
		Auth:   witness.Verifier{AccountWidth: cfg.Layouts.Local.AccountWidth},
		Builder: codec.BalancesTransfer{
			Layout:      cfg.Layouts.Relay,
			PalletIndex: cfg.Upward.PalletIndex,
			CallIndex:   cfg.Upward.CallIndex,
		},
		Outbox:      ob,
		Metrics:     m,
		LocalLayout: cfg.Layouts.Local,
		RelayLayout: cfg.Layouts.Relay,
		PeerLayout:  cfg.Layouts.Parachain,
	})
	if err != nil {
		n.close()
		return nil, fmt.Errorf("init dealer: %w", err)
	}

	disp, err := dispatch.New(dispatch.Prm{
		Logger:      log.With(zap.String("component", "dispatcher")),
		Dealer:      d,
		Events:      events,
		Metrics:     m,
		RelayLayout: cfg.Layouts.Relay,
		PeerLayout:  cfg.Layouts.Parachain,
	})
	if err != nil {
		n.close()
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}

	n.consumer = kafka.NewConsumer(kafka.ConsumerPrm{
		Logger:  log.With(zap.String("component", "consumer")),
		Client:  n.client,
		Topics:  cfg.Kafka.Topics,
		ParaID:  cfg.ParaID,
		Handler: disp,
	})

	if ob != nil {
		n.worker = &outbox.Worker{
			Logger:   log.With(zap.String("component", "outbox")),
			Outbox:   ob,
			Send:     d.Resend,
			Interval: cfg.Outbox.Interval,
		}
	}

	log.Info("token dealer initialized",
		zap.Uint32("para", cfg.ParaID), zap.Stringer("relay account", d.RelayAccount()),
		zap.Stringer("local layout", cfg.Layouts.Local), zap.Bool("outbox", ob != nil))

	return n, nil
}

func (n *node) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return n.consumer.Run(ctx)
	})

	if n.worker != nil {
		g.Go(func() error {
			return n.worker.Run(ctx)
		})
	}

	if addr := n.cfg.Metrics.Address; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: shutdownTimeout,
		}

		g.Go(func() error {
			n.log.Info("metrics server started", zap.String("address", addr))

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(sctx)
		})
	}

	n.log.Info("token dealer started")

	err := g.Wait()

	n.log.Info("token dealer stopped", zap.Error(err))

	return err
}

func (n *node) close() {
	if n.client != nil {
		n.client.Close()
	}

	if err := n.ledger.Close(); err != nil {
		n.log.Warn("failed to close ledger", zap.Error(err))
	}
}
