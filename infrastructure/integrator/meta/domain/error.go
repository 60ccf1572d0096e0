package metadomain

import "fmt"

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// ParseErrorResponse tenta ler o envelope de erro; retorna nil se o corpo não for um
func ParseErrorResponse(body []byte) *ErrorResponse {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error.Message == "" {
		return nil
	}
	return &resp
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// IsRateLimited cobre os códigos de limite de chamadas da Graph API
func (e *ErrorResponse) IsRateLimited() bool {
	switch e.Error.Code {
	case 4, 17, 32, 613, 80004:
		return true
	}
	return false
}

func (e *ErrorResponse) Summary() string {
	summary := fmt.Sprintf("%s (code %d", e.Error.Message, e.Error.Code)
	if e.Error.ErrorSubcode != 0 {
		summary += fmt.Sprintf(", subcode %d", e.Error.ErrorSubcode)
	}
	summary += ")"

	switch {
	case e.IsTokenExpired():
		summary += ": token de acesso expirado ou inválido"
	case e.IsRateLimited():
		summary += ": limite de requisições atingido"
	}
	return summary
}
