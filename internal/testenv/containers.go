// Package testenv starts the catalog's backing services in containers.
// It is used by the integration tests and by the cmd/testcontainers dev launcher.
// Expects environment variables to be loaded from .env files.
package testenv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/virendra-maker/urmaxx-clone/data"
)

const (
	dbNetworkAlias    = "catalog-db"
	authzNetworkAlias = "authorizer"
	dbPort            = "3306"
)

// Options selects the images and credentials for a Stack
type Options struct {
	DBImage        string
	DBRootPassword string
	DBDatabase     string

	// Authorizer is started only when AuthzImage is set
	AuthzImage       string
	AuthzPort        string
	AuthzClientID    string
	AuthzAdminSecret string
	AuthzDatabase    string

	Logf func(format string, args ...any)
}

// OptionsFromEnv reads Options from DB_IMAGE, DB_ROOT_PASSWORD, DB_DATABASE and the AUTHZ_* variables
func OptionsFromEnv() Options {
	return Options{
		DBImage:          os.Getenv("DB_IMAGE"),
		DBRootPassword:   envOr("DB_ROOT_PASSWORD", "catalog-root"),
		DBDatabase:       envOr("DB_DATABASE", "catalog"),
		AuthzImage:       os.Getenv("AUTHZ_IMAGE"),
		AuthzPort:        envOr("AUTHZ_PORT", "8080"),
		AuthzClientID:    os.Getenv("AUTHZ_CLIENT_ID"),
		AuthzAdminSecret: os.Getenv("AUTHZ_ADMIN_SECRET"),
		AuthzDatabase:    envOr("AUTHZ_DATABASE", "authorizer"),
	}
}

// Stack is a running MariaDB, with the catalog schema applied, and an optional Authorizer
type Stack struct {
	Network    *testcontainers.DockerNetwork
	DB         testcontainers.Container
	Authorizer testcontainers.Container

	// DatabaseURL reaches the catalog database from the host
	DatabaseURL string
	// AuthorizerURL reaches the Authorizer from the host, empty when not started
	AuthorizerURL string
}

// Start creates the network and containers. On error everything already started is terminated.
func Start(ctx context.Context, opts Options) (*Stack, error) {
	if opts.DBImage == "" {
		return nil, errors.New("DB_IMAGE is required")
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	stack := &Stack{}
	fail := func(err error, msg string) (*Stack, error) {
		_ = stack.Terminate(context.Background())
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	nw, err := network.New(ctx)
	if err != nil {
		return fail(err, "failed to create network")
	}
	stack.Network = nw

	tcpDbPort, err := nat.NewPort("tcp", dbPort)
	if err != nil {
		return fail(err, "failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.DBImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": opts.DBRootPassword,
				"MYSQL_DATABASE":      opts.DBDatabase,
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return fail(err, "failed to start MariaDB")
	}
	stack.DB = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return fail(err, "failed to resolve MariaDB host")
	}
	mapped, err := dbContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		return fail(err, "failed to resolve MariaDB port")
	}
	if err := initDatabase(ctx, opts, host, mapped); err != nil {
		return fail(err, "failed to initialize database")
	}
	stack.DatabaseURL = fmt.Sprintf("mysql://root:%s@%s:%s/%s", opts.DBRootPassword, host, mapped.Port(), opts.DBDatabase)
	logf("DATABASE_URL=%s", stack.DatabaseURL)

	if opts.AuthzImage == "" {
		return stack, nil
	}

	tcpAuthzPort, err := nat.NewPort("tcp", opts.AuthzPort)
	if err != nil {
		return fail(err, "failed to create Authorizer port")
	}
	authzDbConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s", opts.DBRootPassword, dbNetworkAlias, dbPort, opts.AuthzDatabase)
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.AuthzImage,
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     opts.AuthzClientID,
				"PORT":          opts.AuthzPort,
				"DATABASE_TYPE": "mariadb",
				"DATABASE_NAME": opts.AuthzDatabase,
				"DATABASE_URL":  authzDbConnection,
				"ADMIN_SECRET":  opts.AuthzAdminSecret,
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {authzNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return fail(err, "failed to start Authorizer")
	}
	stack.Authorizer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	stack.AuthorizerURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	logf("AUTHZ_URL=%s", stack.AuthorizerURL)

	return stack, nil
}

// Terminate stops every container and removes the network
func (s *Stack) Terminate(ctx context.Context) error {
	var errs []error
	if s.Authorizer != nil {
		if err := s.Authorizer.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate Authorizer: %w", err))
		}
	}
	if s.DB != nil {
		if err := s.DB.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate MariaDB: %w", err))
		}
	}
	if s.Network != nil {
		if err := s.Network.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("remove network: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initDatabase(ctx context.Context, opts Options, host string, port nat.Port) error {
	root, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", opts.DBRootPassword, host, port.Port()))
	if err != nil {
		return err
	}
	defer root.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = root.PingContext(ctx)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	for _, name := range []string{opts.DBDatabase, opts.AuthzDatabase} {
		if name == "" {
			continue
		}
		if _, err := root.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}

	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/%s", opts.DBRootPassword, host, port.Port(), opts.DBDatabase))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ExecuteSQL(db, data.InitdbMariaDBTables); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	return nil
}

// ExecuteSQL runs a script of semicolon separated statements, skipping -- comments
func ExecuteSQL(db *sql.DB, script string) error {
	lines := strings.Split(script, "\n")

	var ncls []string
	for _, l := range lines {
		ncls = append(ncls, excludeComment(l))
	}

	l := strings.Join(ncls, " ")
	queries := strings.Split(l, ";")
	queries = queries[:len(queries)-1]

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

// excludeComment strips a trailing -- comment that is not inside a quoted string
func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var ei int

		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			ei = strings.Index(ck, d)
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			ei = strings.Index(ck, s)
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		if ei < 0 {
			return nc + ck
		}
		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
