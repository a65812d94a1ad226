package entity

// Roles presentes en el token del usuario que opera la caja o la bodega.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)
