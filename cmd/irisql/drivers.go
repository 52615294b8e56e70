package main

// sqlite3 backs local runs of rendered SQL (--driver sqlite3). An IRIS
// database/sql driver registers itself as "iris" when linked into the build.
import _ "github.com/mattn/go-sqlite3"
