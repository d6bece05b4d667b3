// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package sqlstore

const (
	createTablePostgres = `
create table if not exists %[1]s (
  id text primary key,
  checksum text not null,
  step_order integer not null,
  applied_at timestamp with time zone not null default current_timestamp,
  constraint %[2]s_step_order_uq unique (step_order)
)
`
	createTableSqlite = `
create table if not exists %[1]s (
  id text primary key,
  checksum text not null,
  step_order integer not null,
  applied_at text not null,
  constraint %[2]s_step_order_uq unique (step_order)
)
`
	selectAll = `
  select id, checksum, step_order, applied_at
    from %s
order by step_order asc
`
	selectMostRecent = `
  select id, checksum, step_order, applied_at
    from %s
order by step_order desc
   limit 1
`
	insertRecord = `
insert into %s
  (id, checksum, step_order, applied_at)
values
  (%s, %s, %s, %s)
`
	deleteRecord = `
delete from %s
 where id = %s
`
	updateChecksum = `
update %s
   set checksum = %s
 where id = %s
`
	tryLock = `select pg_try_advisory_lock($1)`
	unlock  = `select pg_advisory_unlock($1)`
)
