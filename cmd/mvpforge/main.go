package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/server"
	"github.com/mvpforge/mvpforge/store"
	"github.com/mvpforge/mvpforge/store/db"
)

const (
	greetingBanner = `mvpforge - guided MVP planning for founders`
	version        = "0.1.0"
)

var (
	instanceProfile *profile.Profile

	rootCmd = &cobra.Command{
		Use:   "mvpforge",
		Short: "A guided wizard that turns a raw problem statement into an MVP plan",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			instanceProfile = &profile.Profile{
				Mode:        viper.GetString("mode"),
				Addr:        viper.GetString("addr"),
				Port:        viper.GetInt("port"),
				Data:        viper.GetString("data"),
				Driver:      viper.GetString("driver"),
				DSN:         viper.GetString("dsn"),
				InstanceURL: viper.GetString("instance-url"),
				Version:     version,
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid configuration", "error", err)
				return
			}

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-c
				slog.Info("received signal, shutting down", "signal", sig.String())
				s.Shutdown(ctx)
				cancel()
			}()

			fmt.Println(greetingBanner)
			fmt.Printf("Version %s has been started on port %d\n", instanceProfile.Version, instanceProfile.Port)

			if err := s.Start(ctx); err != nil && err != http.ErrServerClosed {
				slog.Error("failed to start server", "error", err)
				cancel()
			}

			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your mvpforge instance")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("instance-url", rootCmd.PersistentFlags().Lookup("instance-url")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("mvpforge")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
