package circuits

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/circuit"
	"github.com/fevtel/evdash-service-go/pkg/config"
)

func NewCircuitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circuits",
		Short: "commands to inspect and switch backend circuits",
	}

	cmd.PersistentFlags().StringVar(&config.APIURL,
		"api-url",
		"http://localhost:8095",
		"base URL of the backend REST API")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newActivateCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the circuits known to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCircuits(cmd.Context())
		},
	}
}

func newActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate id",
		Short: "makes the given circuit the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return activateCircuit(cmd.Context(), args[0])
		},
	}
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	logger := log.DevLogger(
		os.Stderr,
		parseLogLevel(config.LogLevel, log.InfoLevel),
		log.WithCaller(true),
		log.AddCallerSkip(1))
	log.ResetDefault(logger)
}

func listCircuits(ctx context.Context) error {
	setupLogger()
	api := circuit.NewClient(config.APIURL)
	res, err := api.List(ctx)
	if err != nil {
		log.Error("could not list circuits", log.ErrorField(err))
		return err
	}
	log.Info("got circuits", log.Int("count", len(res.Circuits)))
	for _, c := range res.Circuits {
		log.Info("circuit",
			log.String("id", c.ID),
			log.String("name", c.Name),
			log.Float64("lengthM", c.Metrics.LengthM),
			log.Int("corners", c.Metrics.Corners),
			log.Bool("active", c.ID == res.Active))
	}
	return nil
}

func activateCircuit(ctx context.Context, id string) error {
	setupLogger()
	api := circuit.NewClient(config.APIURL)
	res, err := api.Activate(ctx, id)
	if err != nil {
		log.Error("could not activate circuit", log.ErrorField(err))
		return err
	}
	log.Info("circuit activated",
		log.String("id", res.ID),
		log.String("name", res.Name),
		log.Int("waypoints", len(res.Waypoints)))
	return nil
}
