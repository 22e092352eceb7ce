package handlers

import (
	"encoding/json"
	"net/http"
)

// leituraSchema describes the Reading shape shared by all endpoints.
func leituraSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":        map[string]string{"type": "integer", "format": "int64"},
			"local":     map[string]string{"type": "string"},
			"data_hora": map[string]string{"type": "string", "format": "date-time"},
			"tipo":      map[string]string{"type": "string"},
			"valor":     map[string]string{"type": "number"},
			"unidade":   map[string]interface{}{"type": "string", "nullable": true},
		},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"error":   map[string]string{"type": "string"},
			"message": map[string]string{"type": "string"},
			"code":    map[string]string{"type": "integer"},
		},
	}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{
			"schema": schema,
		},
	}
}

func idParameter() map[string]interface{} {
	return map[string]interface{}{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   map[string]string{"type": "integer"},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the readings API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	notFound := map[string]interface{}{
		"description": "Leitura não encontrada",
		"content":     jsonContent(errorSchema()),
	}
	badRequest := map[string]interface{}{
		"description": "Payload inválido",
		"content":     jsonContent(errorSchema()),
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Leituras API",
			"description": "CRUD de leituras ambientais com séries temporais para gráficos",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/leituras": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Lista todas as leituras",
					"parameters": []map[string]interface{}{
						{
							"name":        "local",
							"in":          "query",
							"description": "Filtro por local (igualdade exata)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Lista de leituras",
							"content": jsonContent(map[string]interface{}{
								"type":  "array",
								"items": leituraSchema(),
							}),
						},
					},
				},
				"post": map[string]interface{}{
					"summary": "Cria uma nova leitura",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(leituraSchema()),
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Leitura criada",
							"content":     jsonContent(leituraSchema()),
						},
						"400": badRequest,
					},
				},
			},
			"/api/leituras/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Busca uma leitura por id",
					"parameters": []map[string]interface{}{idParameter()},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Leitura encontrada",
							"content":     jsonContent(leituraSchema()),
						},
						"404": notFound,
					},
				},
				"put": map[string]interface{}{
					"summary":    "Atualiza todos os campos de uma leitura",
					"parameters": []map[string]interface{}{idParameter()},
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(leituraSchema()),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Leitura atualizada",
							"content":     jsonContent(leituraSchema()),
						},
						"400": badRequest,
						"404": notFound,
					},
				},
				"patch": map[string]interface{}{
					"summary":    "Atualiza campos individuais de uma leitura",
					"parameters": []map[string]interface{}{idParameter()},
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(leituraSchema()),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Leitura atualizada",
							"content":     jsonContent(leituraSchema()),
						},
						"400": badRequest,
						"404": notFound,
					},
				},
				"delete": map[string]interface{}{
					"summary":    "Remove uma leitura",
					"parameters": []map[string]interface{}{idParameter()},
					"responses": map[string]interface{}{
						"204": map[string]interface{}{
							"description": "Leitura removida",
						},
						"404": notFound,
					},
				},
			},
			"/api/leituras/series": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Séries temporais para gráficos",
					"description": "Leituras ordenadas cronologicamente e particionadas por tipo, com rótulos de eixo dd/MM HH:mm",
					"parameters": []map[string]interface{}{
						{
							"name":        "local",
							"in":          "query",
							"description": "Restringe os pontos a um local",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Séries por tipo, locais e tipos distintos",
							"content": jsonContent(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"series": map[string]interface{}{
										"type": "array",
										"items": map[string]interface{}{
											"type": "object",
											"properties": map[string]interface{}{
												"tipo": map[string]string{"type": "string"},
												"pontos": map[string]interface{}{
													"type":  "array",
													"items": leituraSchema(),
												},
											},
										},
									},
									"locais": map[string]interface{}{
										"type":  "array",
										"items": map[string]string{"type": "string"},
									},
									"tipos": map[string]interface{}{
										"type":  "array",
										"items": map[string]string{"type": "string"},
									},
								},
							}),
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
