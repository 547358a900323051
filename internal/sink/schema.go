package sink

// DDL per driver family. The columnar store gets MergeTree tables ordered by
// time; sqlite gets plain rowid tables with the same column names so scalar
// queries behave identically across drivers.

var columnarDDL = []string{
	`CREATE TABLE IF NOT EXISTS events (
		event_id UInt64,
		user_id UInt64,
		event_type LowCardinality(String),
		event_timestamp DateTime,
		page_url String,
		session_id String,
		device_type LowCardinality(String),
		browser LowCardinality(String),
		country LowCardinality(String),
		duration_seconds UInt32,
		revenue Float64
	) ENGINE = MergeTree()
	ORDER BY (event_timestamp, event_id)`,

	`CREATE TABLE IF NOT EXISTS orders (
		order_id UInt64,
		user_id UInt64,
		product_id UInt64,
		quantity UInt8,
		order_date Date,
		order_timestamp DateTime,
		total_amount Float64,
		status LowCardinality(String),
		payment_method LowCardinality(String)
	) ENGINE = MergeTree()
	ORDER BY (order_timestamp, order_id)`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id UInt64,
		name String,
		email String,
		country LowCardinality(String),
		signup_date Date
	) ENGINE = MergeTree()
	ORDER BY user_id`,

	`CREATE TABLE IF NOT EXISTS products (
		product_id UInt64,
		name String,
		category LowCardinality(String),
		price Float64
	) ENGINE = MergeTree()
	ORDER BY product_id`,
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS events (
		event_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		event_timestamp TEXT NOT NULL,
		page_url TEXT NOT NULL,
		session_id TEXT NOT NULL,
		device_type TEXT NOT NULL,
		browser TEXT NOT NULL,
		country TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		revenue REAL NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		order_date TEXT NOT NULL,
		order_timestamp TEXT NOT NULL,
		total_amount REAL NOT NULL,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		country TEXT NOT NULL,
		signup_date TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price REAL NOT NULL
	)`,
}
