package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (cli *commandLine) importStudents(file, classID string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	rows, err := cli.sheets.ReadRows(f)
	if err != nil {
		return err
	}
	res, err := cli.profileSvc.ImportStudents(context.Background(), classID, rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d students imported, %d rows skipped\n", res.Imported, res.Skipped)
	return nil
}
