// Package api registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs/api
package api

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "API Support",
			"url": "https://github.com/localnerve/sportfed",
			"email": "info@localnerve.com"
		},
		"license": {
			"name": "AGPL-3.0",
			"url": "https://www.gnu.org/licenses/agpl-3.0.html"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/trainers": {
			"get": {
				"tags": [
					"Trainers"
				],
				"summary": "List trainers",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "schoolId",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/trainers/{id}": {
			"get": {
				"tags": [
					"Trainers"
				],
				"summary": "Get one",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/saveTrainer": {
			"post": {
				"tags": [
					"Trainers"
				],
				"summary": "Create",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Trainer"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/editTrainer": {
			"post": {
				"tags": [
					"Trainers"
				],
				"summary": "Replace",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Trainer"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/sportsmen": {
			"get": {
				"tags": [
					"Sportsmen"
				],
				"summary": "List sportsmen",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "schoolId",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"name": "nowTrainer",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/sportsmen/{id}": {
			"get": {
				"tags": [
					"Sportsmen"
				],
				"summary": "Get one",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/saveSportsman": {
			"post": {
				"tags": [
					"Sportsmen"
				],
				"summary": "Create",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Sportsman"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/editSportsman": {
			"post": {
				"tags": [
					"Sportsmen"
				],
				"summary": "Replace",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Sportsman"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/competitions": {
			"get": {
				"tags": [
					"Competitions"
				],
				"summary": "List competitions",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/competitions/{id}": {
			"get": {
				"tags": [
					"Competitions"
				],
				"summary": "Get one",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/competitions/save": {
			"post": {
				"tags": [
					"Competitions"
				],
				"summary": "Create",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Competition"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/competitions/edit": {
			"post": {
				"tags": [
					"Competitions"
				],
				"summary": "Replace",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Competition"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/entries": {
			"get": {
				"tags": [
					"Entries"
				],
				"summary": "List entries",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "schoolId",
						"in": "query",
						"required": false
					},
					{
						"type": "string",
						"name": "competitionId",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/entries/{id}": {
			"get": {
				"tags": [
					"Entries"
				],
				"summary": "Get one",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/entries/save": {
			"post": {
				"tags": [
					"Entries"
				],
				"summary": "Create",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Entry"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/entries/edit": {
			"post": {
				"tags": [
					"Entries"
				],
				"summary": "Replace",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.Entry"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/schools": {
			"get": {
				"tags": [
					"Schools"
				],
				"summary": "List schools",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/school": {
			"get": {
				"tags": [
					"Schools"
				],
				"summary": "Get the school of a user",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "userId",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/schools/save": {
			"post": {
				"tags": [
					"Schools"
				],
				"summary": "Create the school of a user",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.School"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/schools/edit": {
			"post": {
				"tags": [
					"Schools"
				],
				"summary": "Replace a school",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/models.School"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.SuccessResponseStruct"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/users": {
			"get": {
				"tags": [
					"Users"
				],
				"summary": "List registered users",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/checkUserRole": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Register a user and report the admin flag",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					},
					"500": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/session": {
			"get": {
				"tags": [
					"Users"
				],
				"summary": "Get the caller's session claim",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/identity/users": {
			"get": {
				"tags": [
					"Identity"
				],
				"summary": "List identity provider users",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-Identity-Token",
						"in": "header",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/identity/users/{id}": {
			"delete": {
				"tags": [
					"Identity"
				],
				"summary": "Delete an identity provider user",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "X-Identity-Token",
						"in": "header",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/identity/admins": {
			"get": {
				"tags": [
					"Identity"
				],
				"summary": "List members of the admin role",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "X-Identity-Token",
						"in": "header",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		},
		"/health": {
			"get": {
				"tags": [
					"Health"
				],
				"summary": "Service health",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/utils.ErrorResponseStruct"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.School": {
			"type": "object",
			"properties": {
				"_id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"userId": {
					"type": "string"
				},
				"photo": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"director": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"region": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"telephone": {
					"type": "string"
				}
			}
		},
		"models.Trainer": {
			"type": "object",
			"properties": {
				"_id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"schoolId": {
					"type": "string"
				},
				"photo": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"birthday": {
					"type": "string"
				},
				"school": {
					"type": "string"
				},
				"telephone": {
					"type": "string"
				}
			}
		},
		"models.Result": {
			"type": "object",
			"properties": {
				"competition": {
					"type": "string"
				},
				"discipline": {
					"type": "string"
				},
				"place": {
					"type": "string"
				}
			}
		},
		"models.Sportsman": {
			"type": "object",
			"properties": {
				"_id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"schoolId": {
					"type": "string"
				},
				"photo": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"birthday": {
					"type": "string"
				},
				"fTrainer": {
					"type": "string"
				},
				"nowTrainer": {
					"type": "string"
				},
				"school": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"telephone": {
					"type": "string"
				},
				"enrolmentDate": {
					"type": "string"
				},
				"studyPlace": {
					"type": "string"
				},
				"listResults": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Result"
					}
				}
			}
		},
		"models.Competition": {
			"type": "object",
			"properties": {
				"_id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"logo": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"startDate": {
					"type": "string"
				},
				"endDate": {
					"type": "string"
				},
				"deadLine": {
					"type": "string"
				},
				"mainJudge": {
					"type": "string"
				},
				"secretary": {
					"type": "string"
				},
				"telephone": {
					"type": "string"
				},
				"place": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"discipline": {
					"type": "string"
				}
			}
		},
		"models.EntryAthlete": {
			"type": "object",
			"properties": {
				"sportsmanId": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"birthday": {
					"type": "string"
				},
				"discipline": {
					"type": "string"
				}
			}
		},
		"models.Entry": {
			"type": "object",
			"properties": {
				"_id": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				},
				"competitionId": {
					"type": "string"
				},
				"schoolId": {
					"type": "string"
				},
				"trainer": {
					"type": "string"
				},
				"telephone": {
					"type": "string"
				},
				"dateSend": {
					"type": "string"
				},
				"sportsmenList": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.EntryAthlete"
					}
				}
			}
		},
		"utils.ErrorResponseStruct": {
			"type": "object",
			"properties": {
				"status": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"timestamp": {
					"type": "string"
				},
				"url": {
					"type": "string"
				},
				"type": {
					"type": "string"
				}
			}
		},
		"utils.SuccessResponseStruct": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"id": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"affectedRows": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		},
		"CookieAuth": {
			"type": "apiKey",
			"name": "cookie_session",
			"in": "cookie"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Sportfed API",
	Description:      "Sports federation records service: schools, trainers, sportsmen, competitions and entries",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
