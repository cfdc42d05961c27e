package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/Freeeeeet/grade_notifier/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// MasterDBName имя главной базы
const MasterDBName = "submitty"

// CourseDBName имя базы курса
func CourseDBName(term, course string) string {
	return fmt.Sprintf("submitty_%s_%s", term, course)
}

// Connector открывает соединения к базам по имени.
// Пула и повторных попыток нет: одно соединение на базу.
type Connector struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewConnector(cfg *config.Config) *Connector {
	return &Connector{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
	}
}

// DSN строит строку подключения. Если Host - каталог, используется unix-сокет.
func (c *Connector) DSN(dbName string) string {
	u := url.URL{
		Scheme: "postgresql",
		Path:   "/" + dbName,
	}

	// пустые значения не передаются, чтобы pgx взял умолчания (пользователь ОС, peer)
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}

	if isDir(c.Host) {
		u.RawQuery = url.Values{"host": {c.Host}}.Encode()
		return u.String()
	}

	u.Host = c.Host
	if c.Port != 0 {
		u.Host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	return u.String()
}

// Connect открывает соединение к базе dbName
func (c *Connector) Connect(ctx context.Context, dbName string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, c.DSN(dbName))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dbName, err)
	}
	return conn, nil
}

// OpenDB возвращает *sql.DB поверх pgx для goose
func (c *Connector) OpenDB(dbName string) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(c.DSN(dbName))
	if err != nil {
		return nil, fmt.Errorf("parse dsn for %s: %w", dbName, err)
	}
	return stdlib.OpenDB(*connConfig), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
