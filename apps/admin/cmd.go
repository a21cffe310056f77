package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
	"github.com/trezcool/chikoro/services/spreadsheet"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	out        io.Writer
	usrSvc     *user.Service
	schoolSvc  *school.Service
	profileSvc *profile.Service
	sheets     spreadsheet.Excel
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command:")
	fmt.Fprintln(cli.out, "      up | up-by-one | up-to VERSION | down | down-to VERSION | redo | reset | status | version")
	fmt.Fprintln(cli.out, "      create NAME [sql|go] | fix")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -role ROLE - create or update a user, then activate it")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  seed - create the default account of every role, with its profile")
	fmt.Fprintln(cli.out, "  importstudents -file FILE.xlsx -class CLASS_ID - import the students of a workbook into a class")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", "", "One of: "+strings.Join(user.AllRoles, ", "))

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importCmd := flag.NewFlagSet("importstudents", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The .xlsx workbook: first name, last name, gender, date of birth, phone.")
	importClass := importCmd.String("class", "", "The ID of the class to enroll the students in.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserRole, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "seed":
		return cli.seed()

	case "importstudents":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" || *importClass == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile, *importClass)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	return string(pwd), err
}
