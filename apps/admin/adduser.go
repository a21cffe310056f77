package main

import (
	"context"
	"fmt"
)

// addUser creates the user with email, or updates its role and password.
func (cli *commandLine) addUser(email, role, pwd string) error {
	usr, err := cli.usrSvc.AddOrUpdate(context.Background(), email, role, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %s (%s) saved\n", usr.Email, usr.Role)
	return nil
}
