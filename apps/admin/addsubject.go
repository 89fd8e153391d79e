package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core"
)

// addSubject seeds a subject for course categorization.
func (cli *commandLine) addSubject(name, color string) error {
	name = core.CleanString(name)
	color = core.CleanString(color)

	_, err := cli.db.ExecContext(context.Background(),
		`INSERT INTO subject (id, name, color) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET color = EXCLUDED.color`,
		uuid.New().String(), name, color,
	)
	return err
}
