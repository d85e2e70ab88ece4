package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sampleProduct struct {
	name, description, price, category string
	stock                              int
}

var sampleProducts = []sampleProduct{
	{"Coca Cola 600ml", "Refresco de cola", "2.50", "Bebidas", 50},
	{"Pepsi 600ml", "Refresco de cola Pepsi", "2.40", "Bebidas", 40},
	{"Agua Mineral 500ml", "Agua mineral embotellada", "1.80", "Bebidas", 60},
	{"Jugo de Naranja 1L", "Jugo natural de naranja", "3.20", "Bebidas", 30},
	{"Galletas Oreo", "Galletas de chocolate con crema", "2.20", "Snacks", 35},
	{"Galletas Marías", "Galletas clásicas Marías", "1.50", "Snacks", 40},
	{"Doritos Nacho", "Tortillas de maíz con sabor nacho", "3.00", "Snacks", 30},
	{"Sabritas Clásicas", "Papas fritas clásicas", "2.80", "Snacks", 25},
	{"Pan de Molde", "Pan integral fresco", "4.50", "Panadería", 20},
	{"Bolillo", "Pan bolillo fresco", "0.80", "Panadería", 50},
	{"Leche Entera 1L", "Leche fresca de vaca", "3.80", "Lácteos", 25},
	{"Queso Manchego 200g", "Queso manchego en rebanadas", "4.90", "Lácteos", 18},
	{"Yogur Natural 150g", "Yogur natural sin azúcar", "1.50", "Lácteos", 22},
	{"Huevos 12 piezas", "Huevo blanco fresco", "3.60", "Despensa", 30},
	{"Arroz 1kg", "Arroz blanco de grano largo", "2.10", "Despensa", 40},
	{"Frijol Negro 1kg", "Frijol negro limpio", "2.30", "Despensa", 35},
	{"Aceite de Oliva 500ml", "Aceite de oliva extra virgen", "6.50", "Despensa", 10},
	{"Azúcar 1kg", "Azúcar refinada", "1.90", "Despensa", 30},
	{"Sal 1kg", "Sal de mesa", "0.90", "Despensa", 25},
	{"Manzanas Rojas", "Manzanas frescas por kilo", "5.00", "Frutas", 15},
	{"Plátanos", "Plátanos frescos por kilo", "3.20", "Frutas", 20},
	{"Tomates", "Tomates frescos por kilo", "2.80", "Verduras", 25},
	{"Cebollas", "Cebollas blancas por kilo", "2.10", "Verduras", 18},
	{"Papel Higiénico 4 rollos", "Papel higiénico suave", "2.50", "Hogar", 30},
	{"Detergente 1L", "Detergente líquido multiusos", "3.00", "Hogar", 20},
	{"Shampoo 400ml", "Shampoo para todo tipo de cabello", "3.80", "Higiene", 15},
	{"Pasta Dental 100ml", "Pasta dental con flúor", "2.20", "Higiene", 18},
	{"Jabón de Tocador", "Jabón suave para manos y cuerpo", "1.10", "Higiene", 25},
}

// Seed fills an empty catalog with the sample products and creates the
// default admin account when none exists.
func Seed(db *sql.DB, adminPassword string, logger *zap.Logger) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count == 0 {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, p := range sampleProducts {
			if _, err := tx.Exec(
				"INSERT INTO products (name, description, price, image, category, stock, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				p.name, p.description, decimal.RequireFromString(p.price), "", p.category, p.stock, now,
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert sample product: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logger.Info("sample products inserted", zap.Int("count", len(sampleProducts)))
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM admin_users").Scan(&count); err != nil {
		return fmt.Errorf("count admin users: %w", err)
	}
	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := db.Exec(
			"INSERT INTO admin_users (username, password, email, created_at) VALUES (?, ?, ?, ?)",
			"admin", string(hash), "admin@tienda.com", time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("insert admin user: %w", err)
		}
		logger.Info("default admin user created", zap.String("username", "admin"))
	}
	return nil
}
