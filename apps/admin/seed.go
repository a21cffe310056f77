package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
)

type defaultAccount struct {
	email, password, role string
}

var defaultAccounts = []defaultAccount{
	{"superadmin@chikoro.co.zw", "Admin@123", user.RoleSuperAdmin},
	{"admin@chikoro.co.zw", "Admin@123", user.RoleAdminStaff},
	{"teacher@chikoro.co.zw", "Teacher@123", user.RoleTeacher},
	{"student@chikoro.co.zw", "Student@123", user.RoleStudent},
	{"parent@chikoro.co.zw", "Parent@123", user.RoleParent},
	{"finance@chikoro.co.zw", "Finance@123", user.RoleFinanceOfficer},
}

var defaultSettings = school.Settings{
	"school_name": "Ultimate College",
	"motto":       "Excellence Through Knowledge",
	"email":       "info@ultimatecollege.co.zw",
	"phone":       "+263 242 000 000",
	"address":     "Harare, Zimbabwe",
}

// seed creates the missing default settings, accounts and profiles. Existing settings and accounts are kept as they are.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	if err := cli.seedSettings(ctx); err != nil {
		return err
	}

	for _, acc := range defaultAccounts {
		usr, err := cli.usrSvc.GetByEmail(ctx, acc.email)
		switch {
		case core.IsNotFound(err):
			if usr, err = cli.usrSvc.AddOrUpdate(ctx, acc.email, acc.role, acc.password); err != nil {
				return errors.Wrapf(err, "creating %s", acc.email)
			}
			fmt.Fprintf(cli.out, "created %s (%s)\n", usr.Email, usr.Role)
		case err != nil:
			return errors.Wrapf(err, "getting %s", acc.email)
		}

		if err = cli.seedProfile(ctx, usr); err != nil {
			return errors.Wrapf(err, "creating the profile of %s", usr.Email)
		}
	}
	return nil
}

func (cli *commandLine) seedSettings(ctx context.Context) error {
	current, err := cli.schoolSvc.Settings(ctx)
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	missing := make(school.Settings)
	for k, v := range defaultSettings {
		if _, ok := current[k]; !ok {
			missing[k] = v
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if _, err = cli.schoolSvc.SaveSettings(ctx, missing); err != nil {
		return errors.Wrap(err, "saving default settings")
	}
	fmt.Fprintf(cli.out, "saved %d default settings\n", len(missing))
	return nil
}

func (cli *commandLine) seedProfile(ctx context.Context, usr user.User) error {
	switch usr.Role {
	case user.RoleTeacher:
		_, err := cli.profileSvc.TeacherOf(ctx, usr.ID)
		if !core.IsNotFound(err) {
			return err
		}
		_, err = cli.profileSvc.CreateTeacher(ctx, profile.Teacher{
			UserID: null.StringFrom(usr.ID), FirstName: "Default", LastName: "Teacher", EmployeeNumber: "T001",
		})
		return err

	case user.RoleStudent:
		_, err := cli.profileSvc.StudentOf(ctx, usr.ID)
		if !core.IsNotFound(err) {
			return err
		}
		s, err := cli.profileSvc.CreateStudent(ctx, profile.UserStudent(usr.ID, "Default", "Student", "Other"))
		if err != nil {
			return err
		}
		classes, err := cli.schoolSvc.Classes(ctx, school.ClassFilter{})
		if err != nil || len(classes) == 0 {
			return err
		}
		return cli.profileSvc.Enroll(ctx, s.ID, classes[0].ID)

	case user.RoleParent:
		_, err := cli.profileSvc.ParentOf(ctx, usr.ID)
		if !core.IsNotFound(err) {
			return err
		}
		_, err = cli.profileSvc.CreateParent(ctx, profile.Parent{UserID: null.StringFrom(usr.ID), FirstName: "Default", LastName: "Parent"})
		return err
	}
	return nil
}
