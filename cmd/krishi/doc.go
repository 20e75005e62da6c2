// Command krishi runs the marketplace server and talks to it.
//
// Server and database:
//
//	krishi serve               # HTTP server, queue workers and scheduler
//	krishi migrate             # run pending migrations
//	krishi migrate:rollback
//	krishi migrate:status
//	krishi seed                # demo accounts and listings
//	krishi route:list
//	krishi queue:work          # standalone workers (needs redis)
//
// Client, against API_BASE_URL:
//
//	krishi login --email customer@krishi.test
//	krishi whoami
//	krishi products --search onion
//	krishi cart:add 3 --quantity 2
//	krishi cart
//	krishi checkout --address "12 Market Road"
//	krishi orders
//	krishi order:status 5 Dispatched
//	krishi moderate farmers verify 7
//	krishi moderate lands approve 3 4 9 --note "site visit done"
//	krishi logout
//
// The session token is kept in CLIENT_TOKEN_PATH, sealed with APP_KEY.
package main
