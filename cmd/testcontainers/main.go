package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/virendra-maker/urmaxx-clone/internal/testenv"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run a MariaDB (and optionally an Authorizer) for local development, with the
catalog schema applied. Prints the DATABASE_URL and AUTHZ_URL to export for the server.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file providing DB_IMAGE and, optionally, AUTHZ_IMAGE

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Info().Str("file", envFilename).Msg("Loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatal().Err(err).Msg("Failed to load environment variables")
		}
	} else {
		log.Info().Msg("No environment file specified, using current environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	opts := testenv.OptionsFromEnv()
	opts.Logf = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}

	stack, err := testenv.Start(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create test containers")
	}

	<-ctx.Done()
	log.Info().Msg("Received signal, terminating test containers")
	if err := stack.Terminate(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to terminate test containers")
		os.Exit(1)
	}
}
