package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"PrescriptionPad/config"
	"PrescriptionPad/controllers"
	"PrescriptionPad/jobs"
	"PrescriptionPad/routes"
	"PrescriptionPad/services"
	"PrescriptionPad/storage"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	startServer = func(srv *http.Server) error { return srv.ListenAndServe() }

	configPath string
	cfg        config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prescriptionpad",
	Short: "Write, store, search and print prescriptions",
	Long: `PrescriptionPad serves a single-user prescription form.

Prescriptions are kept newest first in a key-value store (leveldb by default,
mongo or redis when configured) and can be exported as a QR code or printed.

Run without a subcommand to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = config.NewLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		if cfg.EnvFileErr != nil {
			logger.Warn("Error in loading the ENV", zap.Error(cfg.EnvFileErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prescriptions, optionally filtered by patient or doctor",
	RunE:  runList,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write every stored prescription to a JSON file in the backup directory",
	RunE:  runBackup,
}

var printCmd = &cobra.Command{
	Use:   "print [prescription-id]",
	Short: "Write the printable HTML page of a stored prescription",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	listCmd.Flags().String("search", "", "only show prescriptions whose patient or doctor contains this text")
	printCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(serveCmd, listCmd, backupCmd, printCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	kv      storage.KeyValue
	manager *services.Manager
	gate    *services.CredentialGate
}

func newApp(ctx context.Context) (*app, error) {
	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	store := services.NewRecordStore(kv, logger)
	return &app{
		kv:      kv,
		manager: services.NewManager(store, services.NewQRRenderer(), logger),
		gate:    services.NewCredentialGate(cfg.UsersCSV, &http.Client{Timeout: 10 * time.Second}, kv, logger),
	}, nil
}

func (a *app) handler() http.Handler {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	routes.Routes(r, routes.Controllers{
		Prescription: &controllers.PrescriptionController{Manager: a.manager, Logger: logger},
		Auth:         &controllers.AuthController{Gate: a.gate},
	}, logger, cfg.CORSOrigins)
	return r
}

/*
* Open the store and build the router
* Start the backup scheduler when a schedule is configured
* Serve until the process is interrupted, then shut down gracefully
 */
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		logger.Error("Error from newApp", zap.Error(err))
		return err
	}
	defer a.kv.Close()

	var scheduler *cron.Cron
	if cfg.BackupSchedule != "" {
		scheduler, err = jobs.StartBackupScheduler(cfg.BackupSchedule, a.manager, cfg.BackupDir, logger)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))

	errCh := make(chan error, 1)
	go func() { errCh <- startServer(srv) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.kv.Close()

	search, _ := cmd.Flags().GetString("search")
	prescriptions, err := a.manager.List(cmd.Context(), search)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(prescriptions) == 0 {
		fmt.Fprintln(out, services.NO_PRESCRIPTIONS)
		return nil
	}
	for _, p := range prescriptions {
		fmt.Fprintf(out, "%d\t%s — %s\t%s\n", p.ID, p.Patient, p.Doctor, p.Date)
	}
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.kv.Close()

	path, err := jobs.RunBackup(cmd.Context(), a.manager, cfg.BackupDir, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid prescription id %q: %w", args[0], err)
	}
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.kv.Close()

	doc, err := a.manager.PrintStored(cmd.Context(), id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return services.WritePrintView(out, doc)
}
