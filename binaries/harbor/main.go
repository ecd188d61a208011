package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/harbor/api"
	"github.com/twitter/harbor/common/endpoints"
	"github.com/twitter/harbor/common/errors"
	"github.com/twitter/harbor/common/stats"
	"github.com/twitter/harbor/driver"
	"github.com/twitter/harbor/framework"
	"github.com/twitter/harbor/generator"
	"github.com/twitter/harbor/mux"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

var (
	masterAddr    string
	frameworkName string
	stateRoot     string
	httpAddr      string
	queueCapacity int
	uninstall     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "harbor",
		Short: "Multi-tenant workload scheduler hosting many service runs on one framework",
		Run:   serve,
	}
	rootCmd.Flags().StringVar(&masterAddr, "master", "localhost:5050", "Resource manager master address")
	rootCmd.Flags().StringVar(&frameworkName, "framework_name", "harbor", "Framework name to register under")
	rootCmd.Flags().StringVar(&stateRoot, "state_root", "/var/lib/harbor", "Root directory for persisted state")
	rootCmd.Flags().StringVar(&httpAddr, "http_addr", "localhost:9091", "Bind address for the admin API")
	rootCmd.Flags().IntVar(&queueCapacity, "offer_queue_capacity", 100, "Offer queue capacity, 0 for unbounded")
	rootCmd.Flags().BoolVar(&uninstall, "uninstall", false, "Tear down all runs and deregister the framework")

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(int(errors.InitializationFailureExitCode))
	}
}

func serve(cmd *cobra.Command, args []string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("Starting harbor scheduler")

	persister, err := state.MakeFilePersister(stateRoot)
	if err != nil {
		log.Error("Failed to open state root")
		if serr, ok := err.(*state.Error); ok && serr.Reason == state.StorageFailure {
			framework.HardExitError(errors.NewError(err, errors.LockUnavailableExitCode))
		}
		framework.HardExitError(errors.NewError(err, errors.InitializationFailureExitCode))
	}
	defer persister.ReleaseLock()

	// Uninstall intent outlives the process. Once recorded, relaunching
	// without the flag is refused; finishing the teardown is the only way
	// forward.
	frameworkState := state.NewStateStore(persister, "")
	if uninstall {
		if err := frameworkState.SetUninstalling(); err != nil {
			log.Error("Failed to record uninstall intent")
			framework.HardExitError(errors.NewError(err, errors.InitializationFailureExitCode))
		}
	} else if frameworkState.IsUninstalling() {
		log.Error("A framework uninstall is in progress; relaunch with --uninstall to finish it")
		framework.HardExit(errors.AlreadyUninstallingExitCode)
	}

	stat := stats.DefaultStatsReceiver().Scope("harbor")
	specStore := state.NewSpecStore(persister)
	registry := generator.NewRegistry("yaml").
		Register("yaml", generator.NewYAMLGenerator(persister))
	manager := run.NewManager(run.NewActiveRunSet())

	recovered, err := registry.RecoverRuns(specStore, persister)
	if err != nil {
		log.Error("Failed to recover previously admitted services")
		framework.HardExitError(errors.NewError(err, errors.InitializationFailureExitCode))
	}
	for _, r := range recovered {
		if err := manager.Put(r); err != nil {
			log.Errorf("Failed to re-admit service %s", r.Name())
			framework.HardExitError(errors.NewError(err, errors.InitializationFailureExitCode))
		}
	}

	var uninstallPlan *run.UninstallPlan
	if uninstall {
		uninstallPlan = run.NewUninstallPlan()
	}
	httpDriver := driver.NewHTTPDriver(masterAddr, frameworkName)
	eventMux := mux.NewMux(specStore, manager, registry, uninstallPlan, func(runName string) {
		log.Infof("Service %s has been uninstalled", runName)
	})

	frameworkStore := framework.NewStore(persister)
	processor := framework.NewOfferProcessor(eventMux, httpDriver, queueCapacity, stat.Scope("processor"))
	processor.SetTeardown(func() {
		if err := httpDriver.Teardown(); err != nil {
			log.Error("Framework teardown call failed")
			framework.HardExitError(errors.NewError(err, errors.DriverExitedExitCode))
		}
		eventMux.Unregistered()
		// The registration is gone for good; forget the framework id and
		// the uninstall intent so a future launch starts fresh.
		if err := frameworkStore.ClearFrameworkID(); err != nil {
			log.Errorf("Failed to clear framework id: %v", err)
		}
		if err := frameworkState.DeleteProperty(state.UninstallingProperty); err != nil {
			log.Errorf("Failed to clear uninstall intent: %v", err)
		}
		httpDriver.Stop()
		log.Info("Framework uninstall complete")
		persister.ReleaseLock()
		framework.HardExit(errors.SuccessExitCode)
	})
	sched := framework.NewScheduler(frameworkStore, eventMux, processor)

	server := endpoints.NewTwitterServer(httpAddr, stat)
	api.NewHandler(manager, specStore, registry).Register(server.Handle)
	go func() {
		if err := server.Serve(); err != nil {
			log.Error("API server failed")
			framework.HardExitError(errors.NewError(err, errors.APIServerExitCode))
		}
	}()
	sched.SetReadyToAcceptOffers()

	previousID, _, err := frameworkStore.FetchFrameworkID()
	if err != nil {
		log.Error("Failed to read stored framework id")
		framework.HardExitError(errors.NewError(err, errors.InitializationFailureExitCode))
	}
	if err := httpDriver.Run(sched, previousID); err != nil {
		log.Error("Driver exited")
		framework.HardExitError(errors.NewError(err, errors.DriverExitedExitCode))
	}
}
