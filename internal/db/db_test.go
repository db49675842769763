package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_InvalidURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Connect(ctx, "not a database url", nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestSchemaDeclaresTables(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS job_descriptions")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS ranking_runs")
	assert.Contains(t, schema, "results     JSONB NOT NULL")
}
