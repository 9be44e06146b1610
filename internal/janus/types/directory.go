package types

// Catalog rows use the column names the directory tables have always
// exposed: dept_id/department_name, role_id/role_name,
// desgn_id/designation_name.
type Department struct {
	DeptID         int64  `json:"dept_id"`
	DepartmentName string `json:"department_name"`
}

type Role struct {
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
}

type Designation struct {
	DesgnID         int64  `json:"desgn_id"`
	DesignationName string `json:"designation_name"`
}

// Assignment bodies. Pointers let PATCH leave a side unchanged.
type UserRole struct {
	ID     int64  `json:"id"`
	EmpID  *int64 `json:"emp_id"`
	RoleID *int64 `json:"role_id"`
}

type UserDepartment struct {
	ID     int64  `json:"id"`
	EmpID  *int64 `json:"emp_id"`
	DeptID *int64 `json:"dept_id"`
}

type UserDesignation struct {
	ID      int64  `json:"id"`
	EmpID   *int64 `json:"emp_id"`
	DesgnID *int64 `json:"desgn_id"`
}
