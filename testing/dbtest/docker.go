// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package dbtest starts postgres databases in docker for tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ory/dockertest/v3"
)

const (
	// EnvPostgresUrl points tests at an existing postgres database instead of
	// starting a container.
	EnvPostgresUrl = "STEPLEDGER_TESTING_PG_URL"

	// EnvDocker enables tests which start postgres in docker.
	EnvDocker = "STEPLEDGER_TEST_DOCKER"

	// MinimumSupportedPostgresVersion is the tag used when an image is given
	// without one.
	MinimumSupportedPostgresVersion = "13"
)

var mx sync.Mutex

// DockerEnabled reports whether postgres tests should run.
func DockerEnabled() bool {
	return os.Getenv(EnvPostgresUrl) != "" || os.Getenv(EnvDocker) != ""
}

// StartPostgres starts a postgres container and returns its url. When
// STEPLEDGER_TESTING_PG_URL is set that url is returned and nothing is
// started. The returned cleanup func removes the container.
func StartPostgres(opt ...Option) (cleanup func() error, retURL string, err error) {
	mx.Lock()
	defer mx.Unlock()
	noop := func() error { return nil }

	if url := os.Getenv(EnvPostgresUrl); url != "" {
		return noop, url, nil
	}

	repository, tag := "postgres", MinimumSupportedPostgresVersion
	opts := GetOpts(opt...)
	if opts.withContainerImage != "" {
		repository, tag, err = splitImage(opts)
		if err != nil {
			return noop, "", fmt.Errorf("error parsing reference: %w", err)
		}
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return noop, "", fmt.Errorf("could not connect to docker: %w", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: repository,
		Tag:        tag,
		Env:        []string{"POSTGRES_PASSWORD=password", "POSTGRES_DB=stepledger"},
		Cmd:        []string{"-c", "jit=off"},
	})
	if err != nil {
		return noop, "", fmt.Errorf("could not start resource: %w", err)
	}
	cleanup = func() error {
		return cleanupDockerResource(pool, resource)
	}

	url := fmt.Sprintf("postgres://postgres:password@%s/stepledger?sslmode=disable", resource.GetHostPort("5432/tcp"))
	if err := pool.Retry(func() error {
		d, err := sql.Open("pgx", url)
		if err != nil {
			return fmt.Errorf("error opening postgres dev container: %w", err)
		}
		defer d.Close()
		return d.Ping()
	}); err != nil {
		return cleanup, "", fmt.Errorf("could not ping postgres on startup: %w", err)
	}
	return cleanup, url, nil
}

// cleanupDockerResource will clean up the dockertest resources (postgres)
func cleanupDockerResource(pool *dockertest.Pool, resource *dockertest.Resource) error {
	var err error
	for i := 0; i < 10; i++ {
		err = pool.Purge(resource)
		if err == nil {
			return nil
		}
	}
	if strings.Contains(err.Error(), "No such container") {
		return nil
	}
	return fmt.Errorf("failed to cleanup local container: %s", err)
}

// splitImage takes the WithContainerImage option and separates it into
// repo + tag. If a tag is not found, the minimum supported version is used
// for the postgres repo.
func splitImage(opts Options) (string, string, error) {
	separated := strings.Split(opts.withContainerImage, ":")
	switch len(separated) {
	case 1:
		if separated[0] == "postgres" {
			return separated[0], MinimumSupportedPostgresVersion, nil
		}
		return "", "", fmt.Errorf("valid reference format is repo:tag, if"+
			" no tag provided then repo must be postgres, got: %s", opts.withContainerImage)
	case 2:
		return separated[0], separated[1], nil
	default:
		return "", "", fmt.Errorf("valid reference format is repo:tag, got: %s", opts.withContainerImage)
	}
}
