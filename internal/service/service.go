// Package service exposes the agenda through a Portuguese-named REST API:
// CRUD plus filtered listing on /contatos and /compromissos. Handlers are
// stateless; each one performs a single logical store call and maps its
// outcome to an HTTP status.
package service

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"gitlab.com/mfcardoso/agenda-contatos/internal/model"
	"gitlab.com/mfcardoso/agenda-contatos/internal/store"
)

// st is a handle to the database access layer.
var st *store.Store

// logger receives the causes of internal errors; response bodies never do.
var logger zerolog.Logger

// SetupDatabaseWrapper initializes the store with the specified sql
// database. The database argument can be a real pgx connection for
// production use or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB, log zerolog.Logger) {
	st = store.New(sqlx.NewDb(sqlDB, "pgx"))
	logger = log
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints. Request logging is skipped when ginLogging is "off".
func SetupHttpRouter(ginLogging string) *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(ginLogging, "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	router.GET("/contatos", findContatos)
	router.POST("/contatos", createContato)
	router.GET("/contatos/:id", findContatoByID)
	router.PUT("/contatos/:id", updateContatoByID)
	router.DELETE("/contatos/:id", deleteContatoByID)
	router.GET("/compromissos", findCompromissos)
	router.POST("/compromissos", createCompromisso)
	router.GET("/compromissos/:id", findCompromissoByID)
	router.PUT("/compromissos/:id", updateCompromissoByID)
	router.DELETE("/compromissos/:id", deleteCompromissoByID)
	return router
}

// parseID interprets the id path parameter as an integer. Anything
// non-numeric is rejected with BAD REQUEST before the database is touched.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return id, true
}

// internalError logs the cause server-side and answers with a generic
// message, leaking no internal detail to the caller.
func internalError(c *gin.Context, err error) {
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
}

// findContatos responds with the list of contacts as JSON.
//
// The URL parameter 'busca' narrows the list to contacts whose nome,
// sobrenome, telefone or email contains the term. The URL parameter
// 'favoritos=true' narrows the list to favorites. Both filters combine.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contatos"
//	> curl "http://localhost:8080/contatos?busca=Silva"
//	> curl "http://localhost:8080/contatos?busca=Silva&favoritos=true"
func findContatos(c *gin.Context) {
	busca := c.Query("busca")
	favoritos := c.Query("favoritos") == "true"
	contatos, err := st.ListarContatos(c.Request.Context(), busca, favoritos)
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contatos)
}

// createContato inserts the contact specified in the request's JSON into
// the database. It responds with the full contact data including the newly
// assigned id and creation timestamp.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contatos --request "POST" --include --header "Content-Type: application/json" --data '{"nome": "Ana", "telefone": "(11) 91234-5678"}'
func createContato(c *gin.Context) {
	input, ok := bindContato(c)
	if !ok {
		return
	}
	contato, err := st.CriarContato(c.Request.Context(), input)
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, contato)
}

// findContatoByID locates the contact whose ID value matches the id
// parameter of the request URL, then returns that contact as a response.
func findContatoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contato, err := st.BuscarContato(c.Request.Context(), id)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contato)
}

// updateContatoByID replaces every mutable field of the contact whose ID
// value matches the id parameter with the values of the request's JSON.
// Fields omitted by the caller become null or their default; this is a full
// replace, not a patch.
func updateContatoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	input, ok := bindContato(c)
	if !ok {
		return
	}
	contato, err := st.AtualizarContato(c.Request.Context(), id, input)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contato)
}

// deleteContatoByID deletes the contact whose ID value matches the id
// parameter from the database. The cascade rule removes its appointments
// along with it. On success a confirmation is returned, not the record.
func deleteContatoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := st.RemoverContato(c.Request.Context(), id)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contato não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "Contato removido com sucesso"})
}

// bindContato reads and validates the contact payload. Nome and telefone
// are mandatory.
func bindContato(c *gin.Context) (model.ContatoInput, bool) {
	var input model.ContatoInput
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "JSON inválido"})
		return model.ContatoInput{}, false
	}
	if input.Nome == "" || input.Telefone == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Nome e telefone são obrigatórios"})
		return model.ContatoInput{}, false
	}
	return input, true
}

// findCompromissos responds with the list of appointments as JSON, each
// joined with the summary of its contact (or a null contato).
//
// The URL parameters 'dataInicio' and 'dataFim' bound the appointment date
// inclusively, 'tipo' matches the category, 'concluido' the completion flag
// and 'contatoId' the owning contact. All supplied filters combine with
// AND. A non-numeric contatoId is ignored.
//
// REST API calls:
//
//	> curl "http://localhost:8080/compromissos"
//	> curl "http://localhost:8080/compromissos?dataInicio=2026-01-01&dataFim=2026-01-31"
//	> curl "http://localhost:8080/compromissos?tipo=saude&concluido=false"
//	> curl "http://localhost:8080/compromissos?contatoId=3"
func findCompromissos(c *gin.Context) {
	filtro := store.FiltroCompromissos{
		DataInicio: c.Query("dataInicio"),
		DataFim:    c.Query("dataFim"),
		Tipo:       c.Query("tipo"),
	}
	if valor, ok := c.GetQuery("concluido"); ok {
		concluido := valor == "true"
		filtro.Concluido = &concluido
	}
	if valor := c.Query("contatoId"); valor != "" {
		if contatoId, err := strconv.ParseInt(valor, 10, 64); err == nil {
			filtro.ContatoId = &contatoId
		}
	}
	compromissos, err := st.ListarCompromissos(c.Request.Context(), filtro)
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, compromissos)
}

// createCompromisso inserts the appointment specified in the request's JSON
// into the database. An omitted tipo is stored as "outro".
//
// Example REST API call:
//
//	> curl http://localhost:8080/compromissos --request "POST" --include --header "Content-Type: application/json" --data '{"titulo": "Consulta", "data": "2026-09-01", "hora": "10:30", "contatoId": 2}'
func createCompromisso(c *gin.Context) {
	input, ok := bindCompromisso(c)
	if !ok {
		return
	}
	compromisso, err := st.CriarCompromisso(c.Request.Context(), input)
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, compromisso)
}

// findCompromissoByID locates the appointment whose ID value matches the id
// parameter, joined with its contact summary.
func findCompromissoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	compromisso, err := st.BuscarCompromisso(c.Request.Context(), id)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Compromisso não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, compromisso)
}

// updateCompromissoByID replaces every mutable field of the appointment
// whose ID value matches the id parameter, never a partial merge.
func updateCompromissoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	input, ok := bindCompromisso(c)
	if !ok {
		return
	}
	compromisso, err := st.AtualizarCompromisso(c.Request.Context(), id, input)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Compromisso não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, compromisso)
}

// deleteCompromissoByID deletes the appointment whose ID value matches the
// id parameter from the database.
func deleteCompromissoByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := st.RemoverCompromisso(c.Request.Context(), id)
	if errors.Is(err, store.ErrNaoEncontrado) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Compromisso não encontrado"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "Compromisso removido com sucesso"})
}

// bindCompromisso reads and validates the appointment payload. Título, data
// and hora are mandatory.
func bindCompromisso(c *gin.Context) (model.CompromissoInput, bool) {
	var input model.CompromissoInput
	if err := c.BindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "JSON inválido"})
		return model.CompromissoInput{}, false
	}
	if input.Titulo == "" || input.Data == "" || input.Hora == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Título, data e hora são obrigatórios"})
		return model.CompromissoInput{}, false
	}
	return input, true
}
