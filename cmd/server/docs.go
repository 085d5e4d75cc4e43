package main

// @title Users API
// @version 1.0
// @description CRUD API for the users resource: list, get by id, login by name, create, partial update and delete.

// @host localhost:8080
// @BasePath /

// @tag.name Users
// @tag.description User management endpoints

// @tag.name Health
// @tag.description Health check endpoints

//go:generate swag init -g docs.go -d ./,../../internal -o ../../docs
