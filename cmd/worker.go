package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/backstage/services/supplychain/internal/messaging"
	"example.com/backstage/services/supplychain/internal/services"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Consume carrier shipment status updates from Azure Service Bus and periodically compare stored material stages with the contract`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Azure.QueueConnStr != "" {
		consumer, err := messaging.NewConsumer(cfg.Azure.QueueConnStr)
		if err != nil {
			return err
		}
		defer consumer.Close()

		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.ShipmentQueueName).Msg("Starting shipment status consumer")
			return consumer.Run(ctx, cfg.Azure.ShipmentQueueName, services.ShipmentStatusHandler(a.services.Shipments))
		})
	} else {
		log.Warn().Msg("Azure Service Bus connection string not provided, shipment status consumer disabled")
	}

	checker := services.NewStageDriftChecker(a.store.Repositories.Materials, a.contract)
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return errors.Wrap(err, "failed to create scheduler")
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.DriftInterval),
			gocron.NewTask(func() {
				drifted, err := checker.Check(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Stage drift check failed")
					return
				}
				log.Info().Int("drifted", len(drifted)).Msg("Stage drift check completed")
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return errors.Wrap(err, "failed to schedule stage drift check")
		}

		log.Info().Dur("interval", cfg.Worker.DriftInterval).Msg("Starting stage drift check")
		scheduler.Start()

		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
		return err
	}

	log.Info().Msg("Worker stopped")
	return nil
}
