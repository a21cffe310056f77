/*
Package chikoro is a school management system for Zimbabwean secondary schools.

	apps/api     HTTP API (echo) serving the admin, teacher, student, parent and finance portals
	apps/admin   command line for migrations, accounts, seeding and student imports
	client       Go client of the HTTP API, with session handling and portal routing
	core         domain services and models
	services     email, cache, events, files, spreadsheets, logging
	storage      SQL repositories and migrations
*/
package chikoro
