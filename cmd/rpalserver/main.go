/*
Rpalserver starts an RPAL interpreter server and begins listening for new
connections.

Usage:

	rpalserver [flags]
	rpalserver [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for HTTP requests and responds to them using
REST protocol. By default it listens on localhost:8080. This can be changed
with the --listen/-l flag (or config via environment var). The flag argument
must be either a full address with port, such as "192.168.0.2:6001", or just
the port preceeded by a colon, such as ":6001".

If a claim-token secret is not given, one will be randomly generated at
startup. As a consequence, in this mode of operation all run claim tokens are
rendered invalid as soon as the server shuts down. This is suitable for
testing, but a secret must be given via flags, environment variable, or
config file if running in production.

The flags are:

	-v, --version
		Give the current version of the RPAL server and then exit.

	-c, --config FILE
		Read configuration from the given TOML file. Values given via other
		flags or environment variables take precedence over the file.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment
		variable RPAL_LISTEN_ADDRESS, and if that is not given, will default
		to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing run claim tokens. If there are
		less than 32 bytes in the secret, it will be repeated until it is.
		The maximum size is 64 bytes. If not given, will default to the value
		of environment variable RPAL_TOKEN_SECRET, and if that is empty too,
		a random secret is generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of: inmem,
		sqlite. inmem has no further params; sqlite needs the path to the
		data directory, such as sqlite:path/to/db_dir. If not given, will
		default to the value of environment variable RPAL_DATABASE, and
		failing that, an in-memory database is selected.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Pratheep-Srikones/rpal-online/internal/version"
	"github.com/Pratheep-Srikones/rpal-online/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "RPAL_LISTEN_ADDRESS"
	EnvSecret = "RPAL_TOKEN_SECRET"
	EnvDB     = "RPAL_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of the RPAL server and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Read configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for claim token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("rpalserver %s\n", version.ServerCurrent)
		return
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// start from the config file, if one was given
	var cfg server.Config
	if *flagConfig != "" {
		var err error
		cfg, err = server.LoadConfigFile(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read config: %s\n", err.Error())
			os.Exit(1)
		}
	}

	// get address info
	port := 0
	addr := ""
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		bindParts := strings.SplitN(listenAddr, ":", 2)
		if len(bindParts) != 2 {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}

		var err error

		addr = bindParts[0]
		port, err = strconv.Atoi(bindParts[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q is not a valid port number.\nDo -h for help.\n", bindParts[1])
			os.Exit(1)
		}
	}

	// look at db connection string
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
			os.Exit(1)
		}
		cfg.DB = db
	}

	// get token secret
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	// was the secret given?
	if tokSecStr != "" {
		// if so, validate it
		tokSecret := []byte(tokSecStr)

		for len(tokSecret) < server.MinSecretSize {
			doubledTokSecret := make([]byte, len(tokSecret)*2)
			copy(doubledTokSecret, tokSecret)
			copy(doubledTokSecret[len(tokSecret):], tokSecret)
			tokSecret = doubledTokSecret
		}

		if len(tokSecret) > server.MaxSecretSize {
			// keys would be chopped at the max, so rather than the user
			// thinking they have more security by giving a longer key,
			// refuse to start.
			fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\nDo -h for help.\n", len(tokSecret), server.MaxSecretSize)
			os.Exit(1)
		}

		cfg.TokenSecret = tokSecret
	} else if cfg.TokenSecret == nil {
		// generate a new one

		// use all possible bytes if doing a generated secret
		tokSecret := make([]byte, server.MaxSecretSize)
		_, err := rand.Read(tokSecret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}
		cfg.TokenSecret = tokSecret

		// yell at the user bc they should know their tokens might not last
		log.Printf("WARN  Using generated token secret; all claim tokens issued will become invalid at shutdown")
	}

	// configuration complete, initialize the server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	defer srv.Close()
	log.Printf("DEBUG Server initialized")

	// okay, now actually launch it
	log.Printf("INFO  Starting RPAL server %s...", version.ServerCurrent)
	if err := srv.ServeForever(addr, port); err != nil {
		log.Fatalf("FATAL %s", err.Error())
	}
}
