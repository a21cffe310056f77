package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/user"
)

func pageParams(q url.Values, page core.Page) url.Values {
	if page.Skip > 0 {
		q.Set("skip", strconv.Itoa(page.Skip))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	return q
}

type UsersAPI struct{ c *Client }

// List queries users; ordering fields take a "-" prefix for descending order.
func (api UsersAPI) List(ctx context.Context, filter user.QueryFilter, page core.Page, ordering ...string) ([]user.User, error) {
	q := params("search", filter.Search, "ordering", strings.Join(ordering, ","))
	if len(filter.Roles) > 0 {
		q.Set("role", strings.Join(filter.Roles, ","))
	}
	if filter.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}

	var users []user.User
	err := api.c.get(ctx, "/users", pageParams(q, page), &users)
	return users, err
}

func (api UsersAPI) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	var usr user.User
	err := api.c.post(ctx, "/users", nu, &usr)
	return usr, err
}

func (api UsersAPI) SetActive(ctx context.Context, id string, active bool) (user.User, error) {
	var usr user.User
	err := api.c.doJSON(ctx, http.MethodPatch, pathID("/users", id), nil, user.UpdateUser{IsActive: &active}, &usr)
	return usr, err
}

func (api UsersAPI) Roles(ctx context.Context) ([]user.Role, error) {
	var roles []user.Role
	err := api.c.get(ctx, "/users/roles", nil, &roles)
	return roles, err
}

type StudentsAPI struct{ c *Client }

func (api StudentsAPI) List(ctx context.Context, filter profile.StudentFilter, page core.Page) ([]profile.PlacedStudent, error) {
	q := params("class_id", filter.ClassID, "form_id", filter.FormID, "academic_year_id", filter.AcademicYearID)
	var students []profile.PlacedStudent
	err := api.c.get(ctx, "/students", pageParams(q, page), &students)
	return students, err
}

func (api StudentsAPI) Get(ctx context.Context, id string) (profile.Student, error) {
	var s profile.Student
	err := api.c.get(ctx, pathID("/students", id), nil, &s)
	return s, err
}

// Me is the student profile of the signed-in student.
func (api StudentsAPI) Me(ctx context.Context) (profile.PlacedStudent, error) {
	var s profile.PlacedStudent
	err := api.c.get(ctx, "/students/me", nil, &s)
	return s, err
}

// Import enrolls the students of an .xlsx workbook in a class.
func (api StudentsAPI) Import(ctx context.Context, classID, filename string, workbook io.Reader) (profile.ImportResult, error) {
	var res profile.ImportResult
	err := api.c.upload(ctx, "/students/import", params("class_id", classID), filename, workbook, &res)
	return res, err
}

type TeachersAPI struct{ c *Client }

func (api TeachersAPI) List(ctx context.Context, page core.Page) ([]profile.Teacher, error) {
	var teachers []profile.Teacher
	err := api.c.get(ctx, "/teachers", pageParams(url.Values{}, page), &teachers)
	return teachers, err
}

func (api TeachersAPI) Get(ctx context.Context, id string) (profile.Teacher, error) {
	var t profile.Teacher
	err := api.c.get(ctx, pathID("/teachers", id), nil, &t)
	return t, err
}

func (api TeachersAPI) Me(ctx context.Context) (profile.TeacherDetail, error) {
	var t profile.TeacherDetail
	err := api.c.get(ctx, "/teachers/me", nil, &t)
	return t, err
}

type ParentsAPI struct{ c *Client }

func (api ParentsAPI) List(ctx context.Context, page core.Page) ([]profile.Parent, error) {
	var parents []profile.Parent
	err := api.c.get(ctx, "/parents", pageParams(url.Values{}, page), &parents)
	return parents, err
}

func (api ParentsAPI) Me(ctx context.Context) (profile.ParentDetail, error) {
	var p profile.ParentDetail
	err := api.c.get(ctx, "/parents/me", nil, &p)
	return p, err
}
