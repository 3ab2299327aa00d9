// Package routes names the application's logical paths.
package routes

const (
	Login   = "/"
	Bills   = "/employee/bills"
	NewBill = "/employee/bill/new"
)
