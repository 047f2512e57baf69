package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voltgrid/tradecore/config"
	"github.com/voltgrid/tradecore/pkg/engine"
	"github.com/voltgrid/tradecore/pkg/engine/policy"
	"github.com/voltgrid/tradecore/pkg/gateway"
	postgres_wrapper "github.com/voltgrid/tradecore/pkg/infra/postgres"
	redis_wrapper "github.com/voltgrid/tradecore/pkg/infra/redis"
	kafkawrapper "github.com/voltgrid/tradecore/pkg/kafka"
	"github.com/voltgrid/tradecore/pkg/logging"
	"github.com/voltgrid/tradecore/pkg/settlement"
	"github.com/voltgrid/tradecore/pkg/settlement/repo"
)

func main() {
	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	log := logging.NewLogger(logging.INFO)
	defer log.Sync() // nolint

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rules []policy.Rule
	if cfg.TickSizeFile != "" {
		tickRule, err := policy.NewTickSizeRuleFromFile(cfg.TickSizeFile)
		if err != nil {
			panic(err)
		}
		rules = append(rules, tickRule)
	}

	eng := engine.New(&engine.Config{Rules: rules}, log)

	var journal repo.IRepo
	if cfg.EngineDB != nil {
		db := postgres_wrapper.InitPostgresWithBackoff(cfg.EngineDB)
		journal = repo.NewRepo(db)
	}

	var cache *goredis.Client
	if cfg.Redis != nil {
		cache, err = redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			panic(err)
		}
	}

	var producer *kafkawrapper.Producer
	tradeTopic := ""
	if cfg.Kafka != nil {
		producer = kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		})
		tradeTopic = cfg.Kafka.TradeTopic
		defer producer.Close() // nolint
	}

	if journal != nil || cache != nil || producer != nil {
		settlement.NewForwarder(&settlement.Config{TradeTopic: tradeTopic},
			eng, producer, journal, cache, log)
	}

	srv := gateway.NewServer(eng, log)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "http server failed", zap.Error(err))
		}
	}()

	fmt.Println("Engine started. Press Ctrl+C to exit.")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	_ = httpServer.Shutdown(context.Background())

	fmt.Println("Exited cleanly.")
}
