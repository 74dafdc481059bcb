package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMongoDatabaseName(t *testing.T) {
	assert.Equal(t, "surveys", mongoDatabaseName("mongodb://localhost:27017/surveys"))
	assert.Equal(t, "audit", mongoDatabaseName("mongodb+srv://u:p@cluster0.example.net/audit?retryWrites=true"))
	assert.Equal(t, "pulse", mongoDatabaseName("mongodb://localhost:27017/?tls=true"))
	assert.Equal(t, "pulse", mongoDatabaseName("mongodb://localhost:27017"))
}
