package scylla

// Les deux tables sont écrites dans le même batch.
// orders_by_user sert l'historique, orders la lecture par identifiant.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS orders_by_user (
		user_id uuid,
		created_at timestamp,
		order_id uuid,
		status text,
		total double,
		first_name text,
		last_name text,
		email text,
		phone text,
		address text,
		comment text,
		delivery_method text,
		payment_method text,
		items text,
		PRIMARY KEY ((user_id), created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, order_id ASC)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id uuid PRIMARY KEY,
		user_id uuid,
		created_at timestamp,
		status text,
		total double,
		first_name text,
		last_name text,
		email text,
		phone text,
		address text,
		comment text,
		delivery_method text,
		payment_method text,
		items text
	)`,
}

const orderColumns = `order_id, user_id, created_at, status, total, first_name, last_name, email, phone,
	address, comment, delivery_method, payment_method, items`

const (
	stmtInsertOrderByUser = `INSERT INTO orders_by_user (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmtInsertOrder       = `INSERT INTO orders (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmtOrdersByUser      = `SELECT ` + orderColumns + ` FROM orders_by_user WHERE user_id = ?`
	stmtOrderByID         = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`
)
