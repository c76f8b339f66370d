// Package example is a small end-to-end demonstration of the thorn
// workflow: table descriptors declared here, emissions written as .thorn
// files alongside them, and the _thorn.go files thorngen generates from
// those (checked in, same as the teacher commits its preprocessed SQL
// batches rather than regenerating them at build time).
package example

import "github.com/vippsas/thorn/schema"

var Users = schema.TableDesc{
	RelName: schema.ToSnakeCase("Users"),
	ColumnList: []schema.Column{
		schema.ColumnDesc{ColumnName: "id", ColumnType: schema.ColumnType{PG: "INT8"}},
		schema.ColumnDesc{ColumnName: "name", ColumnType: schema.ColumnType{PG: "TEXT"}},
		schema.ColumnDesc{ColumnName: "email", ColumnType: schema.ColumnType{PG: "TEXT"}},
	},
	CommentText: "application users",
}
