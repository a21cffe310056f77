package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/user"
)

var (
	errNoStudentProfile = echo.NewHTTPError(http.StatusNotFound, "Student profile not found")
	errNoTeacherProfile = echo.NewHTTPError(http.StatusNotFound, "Teacher profile not found")
	errNoParentProfile  = echo.NewHTTPError(http.StatusNotFound, "Parent profile not found")
)

type profileApi struct {
	svc    *profile.Service
	sheets SheetReader
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *profile.Service, sheets SheetReader) {
	api := profileApi{svc: svc, sheets: sheets}
	admins := requireRoles(user.AdminRoles...)

	sg := g.Group("/students", jwt)
	sg.GET("", api.students, requireRoles(user.StaffRoles...))
	sg.GET("/me", api.myStudent, requireRoles(user.RoleStudent))
	sg.POST("/import", api.importStudents, admins)
	sg.GET("/:id", api.student, requireRoles(plusRoles(user.StaffRoles, user.RoleParent)...))

	tg := g.Group("/teachers", jwt)
	tg.GET("", api.teachers, admins)
	tg.GET("/me", api.myTeacher, requireRoles(user.RoleTeacher))
	tg.GET("/:id", api.teacher, admins)

	pg := g.Group("/parents", jwt)
	pg.GET("", api.parents, admins)
	pg.GET("/me", api.myParent, requireRoles(user.RoleParent))
}

// Students

func (api *profileApi) students(ctx echo.Context) error {
	filter := profile.StudentFilter{
		ClassID:        core.CleanString(ctx.QueryParam("class_id")),
		FormID:         core.CleanString(ctx.QueryParam("form_id")),
		AcademicYearID: core.CleanString(ctx.QueryParam("academic_year_id")),
	}
	students, err := api.svc.Students(ctx.Request().Context(), filter, pageParams(ctx, 50, 200))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *profileApi) myStudent(ctx echo.Context) error {
	s, err := api.svc.StudentOf(ctx.Request().Context(), contextActor(ctx).UserID)
	if err != nil {
		if core.IsNotFound(err) {
			return errNoStudentProfile
		}
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *profileApi) student(ctx echo.Context) error {
	id := ctx.Param("id")
	s, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err = api.svc.CheckStudentAccess(ctx.Request().Context(), contextActor(ctx), s.ID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

// importStudents reads the students of the uploaded workbook into the class_id class.
func (api *profileApi) importStudents(ctx echo.Context) error {
	classID, err := requiredParam(ctx, "class_id")
	if err != nil {
		return err
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewFieldError("file", "an .xlsx file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	rows, err := api.sheets.ReadRows(f)
	if err != nil {
		return core.NewFieldError("file", "the file is not a readable .xlsx workbook")
	}
	res, err := api.svc.ImportStudents(ctx.Request().Context(), classID, rows)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, res)
}

// Teachers

func (api *profileApi) teachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers(ctx.Request().Context(), pageParams(ctx, 50, 200))
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *profileApi) myTeacher(ctx echo.Context) error {
	t, err := api.svc.TeacherOf(ctx.Request().Context(), contextActor(ctx).UserID)
	if err != nil {
		if core.IsNotFound(err) {
			return errNoTeacherProfile
		}
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *profileApi) teacher(ctx echo.Context) error {
	t, err := api.svc.GetTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

// Parents

func (api *profileApi) parents(ctx echo.Context) error {
	parents, err := api.svc.Parents(ctx.Request().Context(), pageParams(ctx, 50, 200))
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	return ctx.JSON(http.StatusOK, parents)
}

func (api *profileApi) myParent(ctx echo.Context) error {
	p, err := api.svc.ParentOf(ctx.Request().Context(), contextActor(ctx).UserID)
	if err != nil {
		if core.IsNotFound(err) {
			return errNoParentProfile
		}
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
