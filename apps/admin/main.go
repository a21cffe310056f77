package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/profile"
	"github.com/trezcool/chikoro/core/school"
	"github.com/trezcool/chikoro/core/user"
	cachesvc "github.com/trezcool/chikoro/services/cache"
	emailsvc "github.com/trezcool/chikoro/services/email"
	logsvc "github.com/trezcool/chikoro/services/logger"
	"github.com/trezcool/chikoro/services/spreadsheet"
	"github.com/trezcool/chikoro/storage/database"
	sqlxrepos "github.com/trezcool/chikoro/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	// set up services
	cache := cachesvc.NewMemoryCache()
	schoolSvc := school.NewService(sqlxrepos.NewSchoolRepository(db), cache, conf, logger)

	// start CLI
	cli := commandLine{
		db:         db,
		out:        os.Stdout,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf, logger), cache, conf),
		schoolSvc:  schoolSvc,
		profileSvc: profile.NewService(sqlxrepos.NewProfileRepository(db), schoolSvc),
		sheets:     spreadsheet.NewExcel(),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
