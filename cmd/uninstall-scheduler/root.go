package main

import (
	"fmt"
	"os"

	echoprometheus "github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesosphere/uninstall-scheduler/internal/api"
	"github.com/mesosphere/uninstall-scheduler/internal/config"
	"github.com/mesosphere/uninstall-scheduler/internal/logger"
	"github.com/mesosphere/uninstall-scheduler/internal/offerproto"
	"github.com/mesosphere/uninstall-scheduler/internal/secrets"
	"github.com/mesosphere/uninstall-scheduler/internal/servicespec"
	"github.com/mesosphere/uninstall-scheduler/internal/store"
	"github.com/mesosphere/uninstall-scheduler/internal/uninstall"
	"github.com/mesosphere/uninstall-scheduler/version"
)

// logStoreSize is how many log events to keep in memory for the operator
// HTTP surface, mirroring the teacher's logStoreSize constant.
const logStoreSize = 25000

var v = viper.New()

var rootCmd = &cobra.Command{
	Use: "uninstall-scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoot(); err != nil {
			log.Errorf("%+v", err)
			os.Exit(1)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config-file", "", "path to a YAML configuration file")
	flags.String("service-name", "", "namespace the uninstall scheduler operates under")
	flags.Bool("uninstall-enabled", false, "gate that enables the uninstall scheduler variant")
	flags.String("secrets-client", "", "secrets client backend: \"\" or \"kubernetes\"")
	flags.String("store-type", "memory", "persistent store backend: \"memory\" or \"postgres\"")
	flags.String("store-postgres-url", "", "postgres connection url, when store-type is \"postgres\"")
	flags.String("http-listen-address", ":8080", "address the operator HTTP surface listens on")
	flags.String("log-level", "info", "logrus level: debug, info, warn, error")

	bind := map[string]string{
		"config_file":         "config-file",
		"service.name":        "service-name",
		"uninstall.enabled":   "uninstall-enabled",
		"secrets.client":      "secrets-client",
		"store.type":          "store-type",
		"store.postgres.url":  "store-postgres-url",
		"http.listen_address": "http-listen-address",
		"log.level":           "log-level",
	}
	for key, flag := range bind {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("uninstall_scheduler")
	v.AutomaticEnv()
}

func runRoot() error {
	cfg, err := config.Load(v)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logBuffer := logger.New(level, logStoreSize)

	printable, err := cfg.Printable()
	if err != nil {
		return err
	}
	log.Infof("uninstall scheduler %s starting with configuration: %s", version.Version, printable)

	if !cfg.Uninstall.Enabled {
		log.Info("uninstall.enabled is false, nothing to do")
		return nil
	}

	backing, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := backing.Close(); cErr != nil {
			log.WithError(cErr).Error("failed to close store")
		}
	}()

	secretsClient, err := buildSecretsClient(cfg)
	if err != nil {
		return err
	}

	// The real offer-protocol driver's wire transport is out of scope for
	// this coordinator (spec §1); production wiring supplies a concrete
	// Driver from the surrounding scheduler framework. This placeholder
	// logs every call so the binary is runnable end to end without a live
	// master connection.
	driver := newLoggingDriver()

	spec := servicespec.ServiceSpec{Name: cfg.Service.Name}

	metrics := uninstall.NewMetrics(promclient.DefaultRegisterer)

	sched, shouldRegister, err := uninstall.NewScheduler(driver, backing, secretsClient, cfg.Service.Name, spec, metrics)
	if err != nil {
		return errors.Wrap(err, "build uninstall scheduler")
	}
	if !shouldRegister {
		log.Info("restart gate: nothing left to do, skipping registration")
	}

	e := echo.New()
	e.HideBanner = true
	echoprometheus.NewPrometheus("uninstall_scheduler", nil).Use(e)
	api.RegisterPlansRoute(e, sched.PlanManager())
	api.RegisterLogsRoute(e, logBuffer)

	log.Infof("operator HTTP surface listening on %s", cfg.HTTP.ListenAddress)
	return e.Start(cfg.HTTP.ListenAddress)
}

// buildStore wraps whichever backend is configured in store.Cache, the
// write-through mirror spec §5 requires on the hot offer-processing path.
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case config.StorePostgres:
		pg, err := store.ConnectPostgres(cfg.Store.Postgres.URL)
		if err != nil {
			return nil, errors.Wrap(err, "connect to postgres")
		}
		if err := store.Migrate(cfg.Store.Postgres.URL, cfg.Store.Postgres.MigrationsDir); err != nil {
			return nil, errors.Wrap(err, "run store migrations")
		}
		cache, err := store.NewCache(pg, cfg.Service.Name)
		if err != nil {
			return nil, errors.Wrap(err, "warm store cache")
		}
		return cache, nil
	case config.StoreMemory, "":
		cache, err := store.NewCache(store.NewMemory(), cfg.Service.Name)
		if err != nil {
			return nil, errors.Wrap(err, "warm store cache")
		}
		return cache, nil
	default:
		return nil, fmt.Errorf("unrecognized store.type %q", cfg.Store.Type)
	}
}

func buildSecretsClient(cfg *config.Config) (secrets.Client, error) {
	switch cfg.Secrets.Client {
	case config.SecretsClientKubernetes:
		clientset, err := newInClusterClientset()
		if err != nil {
			return nil, errors.Wrap(err, "build kubernetes clientset")
		}
		return secrets.NewKubernetesClient(clientset), nil
	case config.SecretsClientNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unrecognized secrets.client %q", cfg.Secrets.Client)
	}
}

// loggingDriver is a placeholder offerproto.Driver that logs every call
// instead of talking to a real master. See the comment in runRoot.
type loggingDriver struct{}

func newLoggingDriver() *loggingDriver { return &loggingDriver{} }

func (d *loggingDriver) Accept(offerIDs []string, ops []offerproto.Operation, filters offerproto.Filters) error {
	log.WithField("offerIds", offerIDs).WithField("operations", len(ops)).Info("driver: accept")
	return nil
}

func (d *loggingDriver) Decline(offerID string, filters offerproto.Filters) error {
	log.WithField("offerId", offerID).Info("driver: decline")
	return nil
}

func (d *loggingDriver) Kill(taskID string) error {
	log.WithField("taskId", taskID).Info("driver: kill")
	return nil
}

func (d *loggingDriver) Reconcile(tasks []offerproto.TaskStatus) error {
	log.WithField("tasks", len(tasks)).Info("driver: reconcile")
	return nil
}

func (d *loggingDriver) Deregister() error {
	log.Info("driver: deregister")
	return nil
}
