//go:build integration

// Package pgtest поднимает Postgres в контейнере для интеграционных тестов.
package pgtest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "submitty_dbuser"
	testPassword = "testpass"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerErr  error
)

// Connector запускает (один раз на пакет) контейнер и возвращает коннектор к нему
func Connector(t *testing.T) *database.Connector {
	t.Helper()

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     testUser,
					"POSTGRES_PASSWORD": testPassword,
					"POSTGRES_DB":       "postgres",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			},
			Started: true,
		})
	})
	require.NoError(t, containerErr, "start postgres container")

	ctx := context.Background()
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &database.Connector{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testPassword,
	}
}

// CreateDatabase создаёт пустую базу name и применяет к ней schema; удаляет её в Cleanup
func CreateDatabase(t *testing.T, c *database.Connector, name, schema string) *pgx.Conn {
	t.Helper()
	ctx := context.Background()

	admin, err := c.Connect(ctx, "postgres")
	require.NoError(t, err)
	defer admin.Close(ctx)

	ident := pgx.Identifier{name}.Sanitize()
	_, err = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+ident+" WITH (FORCE)")
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE DATABASE "+ident)
	require.NoError(t, err, "create database %s", name)

	conn, err := c.Connect(ctx, name)
	require.NoError(t, err)

	if schema != "" {
		_, err = conn.Exec(ctx, schema)
		require.NoError(t, err, "apply schema to %s", name)
	}

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = conn.Close(cleanupCtx)
		admin, err := c.Connect(cleanupCtx, "postgres")
		if err != nil {
			t.Logf("cleanup connect: %v", err)
			return
		}
		defer admin.Close(cleanupCtx)
		if _, err := admin.Exec(cleanupCtx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", ident)); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	return conn
}

// MasterSchema минимальная схема главной базы
const MasterSchema = `
CREATE TABLE terms (
	term_id    varchar(255) PRIMARY KEY,
	name       varchar(255) NOT NULL DEFAULT '',
	start_date timestamptz NOT NULL,
	end_date   timestamptz NOT NULL
);

CREATE TABLE courses (
	term   varchar(255) NOT NULL REFERENCES terms (term_id),
	course varchar(255) NOT NULL,
	PRIMARY KEY (term, course)
);

CREATE TABLE emails (
	id            serial PRIMARY KEY,
	user_id       varchar NOT NULL,
	subject       text NOT NULL,
	body          text NOT NULL,
	created       timestamptz NOT NULL,
	sent          timestamptz,
	error         text NOT NULL DEFAULT '',
	email_address varchar(255) NOT NULL,
	term          varchar,
	course        varchar
);
`

// CourseSchema минимальная схема базы курса
const CourseSchema = `
CREATE TABLE users (
	user_id    varchar PRIMARY KEY,
	user_email varchar NOT NULL,
	user_group integer NOT NULL
);

CREATE TABLE notification_settings (
	user_id                   varchar PRIMARY KEY REFERENCES users (user_id),
	all_released_grades       boolean NOT NULL DEFAULT true,
	all_released_grades_email boolean NOT NULL DEFAULT false
);

CREATE TABLE gradeable (
	g_id                  varchar(255) PRIMARY KEY,
	g_title               varchar(255) NOT NULL,
	g_grade_released_date timestamptz NOT NULL,
	g_notification_state  boolean NOT NULL DEFAULT false
);

CREATE TABLE electronic_gradeable (
	g_id            varchar(255) PRIMARY KEY REFERENCES gradeable (g_id),
	eg_student_view boolean NOT NULL
);

CREATE TABLE notifications (
	id           serial PRIMARY KEY,
	component    varchar(255) NOT NULL,
	metadata     text NOT NULL,
	content      text NOT NULL,
	from_user_id varchar(255),
	to_user_id   varchar(255) NOT NULL REFERENCES users (user_id),
	created_at   timestamptz NOT NULL,
	seen_at      timestamptz
);

CREATE TABLE late_day_exceptions (
	user_id             varchar(255) NOT NULL REFERENCES users (user_id),
	g_id                varchar(255) NOT NULL REFERENCES gradeable (g_id),
	late_day_exceptions integer NOT NULL,
	PRIMARY KEY (user_id, g_id)
);

CREATE TABLE late_day_cache (
	g_id                varchar(255),
	user_id             varchar(255) NOT NULL,
	late_day_exceptions integer,
	late_days_remaining integer
);
`
