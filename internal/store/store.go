// Package store contains all database access of the agenda: CRUD on
// contacts and appointments, the dynamic filter queries of the two list
// endpoints and the administrative bootstrap/seed operations.
//
// Statements are written with '?' placeholders and passed through
// sqlx.DB.Rebind, which turns them into the $N form that the pgx driver
// expects. No statements are prepared or cached so that the store works
// unchanged against pooled or stateless connection setups.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"gitlab.com/mfcardoso/agenda-contatos/internal/model"
)

// ErrNaoEncontrado is returned when an id does not match any row.
var ErrNaoEncontrado = errors.New("registro não encontrado")

// tipoPadrao is the appointment category stored when the caller omits one.
const tipoPadrao = "outro"

// contatoCols are the projected columns of a contact read.
const contatoCols = `id, nome, sobrenome, telefone, email, endereco, notas, favorito, criado_em`

// compromissoCols are the projected columns of an appointment read. Date
// and time are rendered to the wire format already on the database.
const compromissoCols = `c.id, c.contato_id, c.titulo, c.descricao,
	to_char(c.data, 'YYYY-MM-DD') AS data, to_char(c.hora, 'HH24:MI') AS hora,
	c.local, c.tipo, c.concluido, c.criado_em`

// compromissoReturning is the RETURNING list of appointment writes, the
// same projection as compromissoCols without the join alias.
const compromissoReturning = `id, contato_id, titulo, descricao,
	to_char(data, 'YYYY-MM-DD') AS data, to_char(hora, 'HH24:MI') AS hora,
	local, tipo, concluido, criado_em`

// contatoResumoCols are the contact summary columns joined onto an
// appointment read. They are all null when the appointment has no owner.
const contatoResumoCols = `ct.nome AS contato_nome, ct.sobrenome AS contato_sobrenome,
	ct.telefone AS contato_telefone, ct.email AS contato_email`

// Store bundles all database operations on a shared sqlx handle.
type Store struct {
	db *sqlx.DB
}

// New wraps the given database handle. The handle can be a real pgx
// connection for production use or a mock database within unit tests.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the Postgres endpoint described by databaseURL and
// verifies the connection with a ping.
func Open(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// ListarContatos returns all contacts, optionally narrowed by a search term
// and by the favorite flag. The term matches as a substring in any of nome,
// sobrenome, telefone and email. Both filters compose: a favorites-only
// search returns only favorites that also match the term.
func (s *Store) ListarContatos(ctx context.Context, busca string, favoritos bool) ([]model.Contato, error) {
	var conds []string
	var args []interface{}
	if busca != "" {
		conds = append(conds, `(nome LIKE ? OR sobrenome LIKE ? OR telefone LIKE ? OR email LIKE ?)`)
		padrao := "%" + busca + "%"
		args = append(args, padrao, padrao, padrao, padrao)
	}
	if favoritos {
		conds = append(conds, `favorito = ?`)
		args = append(args, true)
	}
	query := `SELECT ` + contatoCols + ` FROM contatos`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	contatos := []model.Contato{}
	if err := s.db.SelectContext(ctx, &contatos, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list contatos: %w", err)
	}
	return contatos, nil
}

// BuscarContato returns the contact with the given id or ErrNaoEncontrado.
func (s *Store) BuscarContato(ctx context.Context, id int64) (model.Contato, error) {
	var contato model.Contato
	query := s.db.Rebind(`SELECT ` + contatoCols + ` FROM contatos WHERE id = ?`)
	if err := s.db.GetContext(ctx, &contato, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contato{}, ErrNaoEncontrado
		}
		return model.Contato{}, fmt.Errorf("get contato %d: %w", id, err)
	}
	return contato, nil
}

// CriarContato inserts a new contact and returns the persisted row
// including the generated id and creation timestamp.
func (s *Store) CriarContato(ctx context.Context, in model.ContatoInput) (model.Contato, error) {
	query := s.db.Rebind(`
		INSERT INTO contatos (nome, sobrenome, telefone, email, endereco, notas, favorito)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + contatoCols)
	var contato model.Contato
	err := s.db.GetContext(ctx, &contato, query,
		in.Nome, in.Sobrenome, in.Telefone, in.Email, in.Endereco, in.Notas, in.Favorito)
	if err != nil {
		return model.Contato{}, fmt.Errorf("insert contato: %w", err)
	}
	return contato, nil
}

// AtualizarContato replaces every mutable field of the contact with the
// given id. Fields absent from the input become null or their default;
// there is no partial merge.
func (s *Store) AtualizarContato(ctx context.Context, id int64, in model.ContatoInput) (model.Contato, error) {
	query := s.db.Rebind(`
		UPDATE contatos
		SET nome = ?, sobrenome = ?, telefone = ?, email = ?, endereco = ?, notas = ?, favorito = ?
		WHERE id = ?
		RETURNING ` + contatoCols)
	var contato model.Contato
	err := s.db.GetContext(ctx, &contato, query,
		in.Nome, in.Sobrenome, in.Telefone, in.Email, in.Endereco, in.Notas, in.Favorito, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Contato{}, ErrNaoEncontrado
		}
		return model.Contato{}, fmt.Errorf("update contato %d: %w", id, err)
	}
	return contato, nil
}

// RemoverContato deletes the contact with the given id. The ON DELETE
// CASCADE rule of the schema removes its appointments along with it.
func (s *Store) RemoverContato(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM contatos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete contato %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contato %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

// FiltroCompromissos holds the optional predicates of the appointment list.
// Zero values mean "do not filter on this dimension".
type FiltroCompromissos struct {
	DataInicio string
	DataFim    string
	Tipo       string
	Concluido  *bool
	ContatoId  *int64
}

// compromissoRow is the flat scan target of the joined appointment select.
type compromissoRow struct {
	model.Compromisso
	ContatoNome      *string `db:"contato_nome"`
	ContatoSobrenome *string `db:"contato_sobrenome"`
	ContatoTelefone  *string `db:"contato_telefone"`
	ContatoEmail     *string `db:"contato_email"`
}

// comContato nests the joined contact summary, or null when the appointment
// has no owning contact.
func (r compromissoRow) comContato() model.CompromissoComContato {
	enriched := model.CompromissoComContato{Compromisso: r.Compromisso}
	if r.Compromisso.ContatoId != nil {
		enriched.Contato = &model.ContatoResumo{
			Nome:      r.ContatoNome,
			Sobrenome: r.ContatoSobrenome,
			Telefone:  r.ContatoTelefone,
			Email:     r.ContatoEmail,
		}
	}
	return enriched
}

// ListarCompromissos returns all appointments joined with their contact
// summary, narrowed by the supplied filters. Every supplied predicate is
// combined with AND; a date range is inclusive on both ends. No ordering or
// limit is imposed.
func (s *Store) ListarCompromissos(ctx context.Context, filtro FiltroCompromissos) ([]model.CompromissoComContato, error) {
	var conds []string
	var args []interface{}
	if filtro.DataInicio != "" {
		conds = append(conds, `c.data >= ?`)
		args = append(args, filtro.DataInicio)
	}
	if filtro.DataFim != "" {
		conds = append(conds, `c.data <= ?`)
		args = append(args, filtro.DataFim)
	}
	if filtro.Tipo != "" {
		conds = append(conds, `c.tipo = ?`)
		args = append(args, filtro.Tipo)
	}
	if filtro.Concluido != nil {
		conds = append(conds, `c.concluido = ?`)
		args = append(args, *filtro.Concluido)
	}
	if filtro.ContatoId != nil {
		conds = append(conds, `c.contato_id = ?`)
		args = append(args, *filtro.ContatoId)
	}
	query := `SELECT ` + compromissoCols + `, ` + contatoResumoCols + `
		FROM compromissos c
		LEFT JOIN contatos ct ON ct.id = c.contato_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	var rows []compromissoRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list compromissos: %w", err)
	}
	compromissos := []model.CompromissoComContato{}
	for _, row := range rows {
		compromissos = append(compromissos, row.comContato())
	}
	return compromissos, nil
}

// BuscarCompromisso returns the appointment with the given id together with
// its contact summary, or ErrNaoEncontrado.
func (s *Store) BuscarCompromisso(ctx context.Context, id int64) (model.CompromissoComContato, error) {
	query := s.db.Rebind(`SELECT ` + compromissoCols + `, ` + contatoResumoCols + `
		FROM compromissos c
		LEFT JOIN contatos ct ON ct.id = c.contato_id
		WHERE c.id = ?`)
	var row compromissoRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CompromissoComContato{}, ErrNaoEncontrado
		}
		return model.CompromissoComContato{}, fmt.Errorf("get compromisso %d: %w", id, err)
	}
	return row.comContato(), nil
}

// CriarCompromisso inserts a new appointment and returns the persisted row.
// An omitted category falls back to "outro".
func (s *Store) CriarCompromisso(ctx context.Context, in model.CompromissoInput) (model.Compromisso, error) {
	query := s.db.Rebind(`
		INSERT INTO compromissos (contato_id, titulo, descricao, data, hora, local, tipo, concluido)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + compromissoReturning)
	var compromisso model.Compromisso
	err := s.db.GetContext(ctx, &compromisso, query,
		in.ContatoId, in.Titulo, in.Descricao, in.Data, in.Hora, in.Local,
		tipoOuPadrao(in.Tipo), in.Concluido)
	if err != nil {
		return model.Compromisso{}, fmt.Errorf("insert compromisso: %w", err)
	}
	return compromisso, nil
}

// AtualizarCompromisso replaces every mutable field of the appointment with
// the given id, never a partial merge.
func (s *Store) AtualizarCompromisso(ctx context.Context, id int64, in model.CompromissoInput) (model.Compromisso, error) {
	query := s.db.Rebind(`
		UPDATE compromissos
		SET contato_id = ?, titulo = ?, descricao = ?, data = ?, hora = ?, local = ?, tipo = ?, concluido = ?
		WHERE id = ?
		RETURNING ` + compromissoReturning)
	var compromisso model.Compromisso
	err := s.db.GetContext(ctx, &compromisso, query,
		in.ContatoId, in.Titulo, in.Descricao, in.Data, in.Hora, in.Local,
		tipoOuPadrao(in.Tipo), in.Concluido, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Compromisso{}, ErrNaoEncontrado
		}
		return model.Compromisso{}, fmt.Errorf("update compromisso %d: %w", id, err)
	}
	return compromisso, nil
}

// RemoverCompromisso deletes the appointment with the given id.
func (s *Store) RemoverCompromisso(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM compromissos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete compromisso %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete compromisso %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

func tipoOuPadrao(tipo string) string {
	if tipo == "" {
		return tipoPadrao
	}
	return tipo
}
