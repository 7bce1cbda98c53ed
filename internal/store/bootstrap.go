package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"gitlab.com/mfcardoso/agenda-contatos/internal/model"
)

// schemaDDL creates both tables and their indexes. Every statement is
// repeat-safe, so running setup twice produces no duplicate-object errors.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS contatos (
		id SERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		sobrenome TEXT,
		telefone TEXT NOT NULL,
		email TEXT,
		endereco TEXT,
		notas TEXT,
		favorito BOOLEAN DEFAULT false,
		criado_em TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS compromissos (
		id SERIAL PRIMARY KEY,
		contato_id INTEGER REFERENCES contatos(id) ON DELETE CASCADE,
		titulo TEXT NOT NULL,
		descricao TEXT,
		data DATE NOT NULL,
		hora TIME NOT NULL,
		local TEXT,
		tipo TEXT DEFAULT 'outro',
		concluido BOOLEAN DEFAULT false,
		criado_em TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contatos_nome ON contatos(nome)`,
	`CREATE INDEX IF NOT EXISTS idx_contatos_telefone ON contatos(telefone)`,
	`CREATE INDEX IF NOT EXISTS idx_compromissos_data ON compromissos(data)`,
	`CREATE INDEX IF NOT EXISTS idx_compromissos_contato_id ON compromissos(contato_id)`,
}

// EnsureSchemaReady attempts a trivial read against both tables and reports
// whether the schema is usable. The cause of a failed read is logged, not
// returned; callers only need the verdict.
func (s *Store) EnsureSchemaReady(ctx context.Context, logger zerolog.Logger) bool {
	for _, table := range []string{"contatos", "compromissos"} {
		var id int64
		query := fmt.Sprintf(`SELECT id FROM %s LIMIT 1`, table)
		err := s.db.GetContext(ctx, &id, query)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			logger.Error().Err(err).Str("table", table).Msg("schema is not ready")
			return false
		}
	}
	logger.Info().Msg("database tables are ready")
	return true
}

// CreateSchemaIfAbsent is the administrative setup operation: it creates
// the target database if the engine's catalog does not know it yet, then
// creates tables and indexes. It connects twice, first to the postgres
// maintenance database and then to the target one.
func CreateSchemaIfAbsent(ctx context.Context, databaseURL string, logger zerolog.Logger) error {
	dbName, adminURL, err := splitDatabaseURL(databaseURL)
	if err != nil {
		return err
	}

	admin, err := Open(adminURL)
	if err != nil {
		return err
	}
	defer admin.Close()

	var one int
	err = admin.GetContext(ctx, &one, admin.Rebind(`SELECT 1 FROM pg_database WHERE datname = ?`), dbName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		logger.Info().Str("database", dbName).Msg("creating database")
		// Identifiers cannot be bound as parameters, so the name is
		// sanitized instead.
		if _, err := admin.ExecContext(ctx, `CREATE DATABASE `+pgx.Identifier{dbName}.Sanitize()); err != nil {
			return fmt.Errorf("create database %s: %w", dbName, err)
		}
	case err != nil:
		return fmt.Errorf("check database %s: %w", dbName, err)
	default:
		logger.Info().Str("database", dbName).Msg("database already exists")
	}

	db, err := Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	logger.Info().Msg("tables and indexes are in place")
	return nil
}

// splitDatabaseURL extracts the database name from the connection URL and
// derives the URL of the postgres maintenance database on the same server.
func splitDatabaseURL(databaseURL string) (dbName string, adminURL string, err error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	dbName = strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("database url %q carries no database name", databaseURL)
	}
	parsed.Path = "/postgres"
	return dbName, parsed.String(), nil
}

// SeedIfEmpty inserts the fixed example data, but only when the contacts
// table has no rows at all. Contacts are inserted first so that the
// appointments can reference their generated ids; appointment dates are
// computed relative to today.
func (s *Store) SeedIfEmpty(ctx context.Context, logger zerolog.Logger) error {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM contatos LIMIT 1`)
	if err == nil {
		logger.Info().Msg("database already has data, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check for existing data: %w", err)
	}

	contatosExemplo := []model.ContatoInput{
		{
			Nome:      "João",
			Sobrenome: str("Silva"),
			Telefone:  "(11) 99999-9999",
			Email:     str("joao.silva@email.com"),
			Endereco:  str("Rua das Flores, 123, São Paulo, SP"),
			Notas:     str("Contato da empresa XYZ"),
			Favorito:  true,
		},
		{
			Nome:      "Maria",
			Sobrenome: str("Santos"),
			Telefone:  "(11) 88888-8888",
			Email:     str("maria.santos@email.com"),
			Endereco:  str("Av. Principal, 456, São Paulo, SP"),
			Notas:     str("Dentista recomendada"),
			Favorito:  false,
		},
		{
			Nome:      "Pedro",
			Sobrenome: str("Oliveira"),
			Telefone:  "(11) 77777-7777",
			Email:     str("pedro.oliveira@email.com"),
			Endereco:  str("Rua do Comércio, 789, São Paulo, SP"),
			Notas:     str("Fornecedor de equipamentos"),
			Favorito:  true,
		},
	}
	ids := make([]int64, 0, len(contatosExemplo))
	for _, exemplo := range contatosExemplo {
		contato, err := s.CriarContato(ctx, exemplo)
		if err != nil {
			return fmt.Errorf("seed contatos: %w", err)
		}
		ids = append(ids, contato.Id)
	}
	logger.Info().Int("count", len(ids)).Msg("inserted example contacts")

	hoje := time.Now()
	compromissosExemplo := []model.CompromissoInput{
		{
			ContatoId: &ids[0],
			Titulo:    "Reunião de Trabalho",
			Descricao: str("Discussão sobre o projeto Q3"),
			Data:      hoje.Format("2006-01-02"),
			Hora:      "14:00",
			Local:     str("Escritório Central"),
			Tipo:      "trabalho",
		},
		{
			ContatoId: &ids[1],
			Titulo:    "Consulta Dentária",
			Descricao: str("Limpeza e check-up regular"),
			Data:      hoje.AddDate(0, 0, 1).Format("2006-01-02"),
			Hora:      "10:30",
			Local:     str("Clínica Odontológica"),
			Tipo:      "saude",
		},
		{
			ContatoId: &ids[2],
			Titulo:    "Entrega de Equipamentos",
			Descricao: str("Recebimento dos novos computadores"),
			Data:      hoje.AddDate(0, 0, 7).Format("2006-01-02"),
			Hora:      "09:00",
			Local:     str("Empresa"),
			Tipo:      "trabalho",
		},
	}
	for _, exemplo := range compromissosExemplo {
		if _, err := s.CriarCompromisso(ctx, exemplo); err != nil {
			return fmt.Errorf("seed compromissos: %w", err)
		}
	}
	logger.Info().Int("count", len(compromissosExemplo)).Msg("inserted example appointments")
	return nil
}

func str(s string) *string {
	return &s
}
