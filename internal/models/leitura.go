package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Known metric kinds. Input validation accepts these case-insensitively;
// stored rows keep the spelling they were created with.
const (
	TipoPM25        = "PM2.5"
	TipoCO2         = "CO2"
	TipoTemperatura = "temperatura"
	TipoUmidade     = "umidade"
)

// Messages returned to API clients on validation failures.
const (
	MsgCamposObrigatorios = "Todos os campos são obrigatórios"
	MsgTipoInvalido       = "Tipo de leitura inválido"
	MsgNenhumCampo        = "Nenhum campo foi atualizado"
)

var tiposConhecidos = []string{TipoPM25, TipoCO2, TipoTemperatura, TipoUmidade}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("tipo", func(fl validator.FieldLevel) bool {
		return TipoValido(fl.Field().String())
	})
	return v
}

// TipoValido reports whether tipo belongs to the known metric vocabulary.
// Comparison is case-insensitive so "Temperatura" and "temperatura" both pass.
func TipoValido(tipo string) bool {
	for _, t := range tiposConhecidos {
		if strings.EqualFold(tipo, t) {
			return true
		}
	}
	return false
}

// Leitura represents a single environmental reading
type Leitura struct {
	ID       int64     `json:"id" db:"id"`
	Local    string    `json:"local" db:"local"`
	DataHora time.Time `json:"data_hora" db:"data_hora"`
	Tipo     string    `json:"tipo" db:"tipo"`
	Valor    float64   `json:"valor" db:"valor"`
	Unidade  *string   `json:"unidade,omitempty" db:"unidade"`
}

// LeituraInput is the payload for create and full update. Valor is a pointer
// so that presence is checked by nil-ness: a reading of 0 is a valid value,
// not a missing one.
type LeituraInput struct {
	Local    string     `json:"local" validate:"required"`
	DataHora *time.Time `json:"data_hora" validate:"required"`
	Tipo     string     `json:"tipo" validate:"required,tipo"`
	Valor    *float64   `json:"valor" validate:"required"`
	Unidade  *string    `json:"unidade,omitempty"`
}

// Validate checks the input against the creation contract.
func (in *LeituraInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &ValidationError{Field: "payload", Message: MsgCamposObrigatorios}
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	if first.Tag() == "tipo" {
		return &ValidationError{Field: field, Message: MsgTipoInvalido}
	}
	return &ValidationError{Field: field, Message: MsgCamposObrigatorios}
}

// ToLeitura builds the entity from a validated input. The store assigns ID.
func (in *LeituraInput) ToLeitura() *Leitura {
	return &Leitura{
		Local:    in.Local,
		DataHora: *in.DataHora,
		Tipo:     in.Tipo,
		Valor:    *in.Valor,
		Unidade:  in.Unidade,
	}
}

// LeituraPatch is the payload for partial update. Only non-nil fields are
// applied.
type LeituraPatch struct {
	Local    *string    `json:"local"`
	DataHora *time.Time `json:"data_hora"`
	Tipo     *string    `json:"tipo"`
	Valor    *float64   `json:"valor"`
	Unidade  *string    `json:"unidade"`
}

// HasUpdates reports whether any of the four updatable reading fields is set.
// A unidade-only patch does not count, matching the update contract.
func (p *LeituraPatch) HasUpdates() bool {
	return p.Local != nil || p.DataHora != nil || p.Tipo != nil || p.Valor != nil
}

// Validate rejects empty patches and unknown tipos.
func (p *LeituraPatch) Validate() error {
	if !p.HasUpdates() {
		return &ValidationError{Field: "payload", Message: MsgNenhumCampo}
	}
	if p.Tipo != nil && !TipoValido(*p.Tipo) {
		return &ValidationError{Field: "tipo", Message: MsgTipoInvalido}
	}
	return nil
}

// Apply merges the provided fields into an existing reading.
func (p *LeituraPatch) Apply(l *Leitura) {
	if p.Local != nil {
		l.Local = *p.Local
	}
	if p.DataHora != nil {
		l.DataHora = *p.DataHora
	}
	if p.Tipo != nil {
		l.Tipo = *p.Tipo
	}
	if p.Valor != nil {
		l.Valor = *p.Valor
	}
	if p.Unidade != nil {
		l.Unidade = p.Unidade
	}
}

// ValidationError represents a payload validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
