package model

import "time"

// Contato is the data structure for a person in the agenda. Nome and
// Telefone are mandatory, all other fields besides the Id may be null on
// the database.
type Contato struct {
	Id        int64      `json:"id"        db:"id"`
	Nome      string     `json:"nome"      db:"nome"`
	Sobrenome *string    `json:"sobrenome" db:"sobrenome"`
	Telefone  string     `json:"telefone"  db:"telefone"`
	Email     *string    `json:"email"     db:"email"`
	Endereco  *string    `json:"endereco"  db:"endereco"`
	Notas     *string    `json:"notas"     db:"notas"`
	Favorito  bool       `json:"favorito"  db:"favorito"`
	CriadoEm  *time.Time `json:"criadoEm"  db:"criado_em"`
}

// Compromisso is a scheduled event that may belong to a contact. Deleting
// the contact deletes its appointments, but an appointment can also live
// without one (ContatoId is null then).
//
// Data travels as "YYYY-MM-DD" and Hora as "HH:MM"; the store formats both
// on the way out of the database.
type Compromisso struct {
	Id        int64      `json:"id"        db:"id"`
	ContatoId *int64     `json:"contatoId" db:"contato_id"`
	Titulo    string     `json:"titulo"    db:"titulo"`
	Descricao *string    `json:"descricao" db:"descricao"`
	Data      string     `json:"data"      db:"data"`
	Hora      string     `json:"hora"      db:"hora"`
	Local     *string    `json:"local"     db:"local"`
	Tipo      string     `json:"tipo"      db:"tipo"`
	Concluido bool       `json:"concluido" db:"concluido"`
	CriadoEm  *time.Time `json:"criadoEm"  db:"criado_em"`
}

// ContatoResumo is the subset of contact fields joined onto appointment
// reads.
type ContatoResumo struct {
	Nome      *string `json:"nome"`
	Sobrenome *string `json:"sobrenome"`
	Telefone  *string `json:"telefone"`
	Email     *string `json:"email"`
}

// CompromissoComContato is an appointment enriched with the summary of its
// owning contact. Contato is null when the appointment has no owner.
type CompromissoComContato struct {
	Compromisso
	Contato *ContatoResumo `json:"contato"`
}

// ContatoInput is the request payload for creating or replacing a contact.
type ContatoInput struct {
	Nome      string  `json:"nome"`
	Sobrenome *string `json:"sobrenome"`
	Telefone  string  `json:"telefone"`
	Email     *string `json:"email"`
	Endereco  *string `json:"endereco"`
	Notas     *string `json:"notas"`
	Favorito  bool    `json:"favorito"`
}

// CompromissoInput is the request payload for creating or replacing an
// appointment.
type CompromissoInput struct {
	ContatoId *int64  `json:"contatoId"`
	Titulo    string  `json:"titulo"`
	Descricao *string `json:"descricao"`
	Data      string  `json:"data"`
	Hora      string  `json:"hora"`
	Local     *string `json:"local"`
	Tipo      string  `json:"tipo"`
	Concluido bool    `json:"concluido"`
}
