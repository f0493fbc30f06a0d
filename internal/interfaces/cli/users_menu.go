package cli

import (
	"context"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
)

func (a *App) usersMenu(ctx context.Context) error {
	for {
		a.println("\n=== ADMINISTRACIÓN DE USUARIOS ===")
		a.println("1. Ver usuarios")
		a.println("2. Agregar usuario")
		a.println("3. Cambiar contraseña")
		a.println("4. Eliminar usuario")
		a.println("0. Volver al menú principal")

		opt, err := a.ask("\nOpción: ")
		if err != nil {
			return err
		}
		switch opt {
		case "1":
			err = a.listUsers(ctx)
		case "2":
			err = a.addUser(ctx)
		case "3":
			err = a.changePassword(ctx)
		case "4":
			err = a.deleteUser(ctx)
		case "0":
			return nil
		default:
			a.println("Opción no válida.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) listUsers(ctx context.Context) error {
	list, err := a.deps.Users.List(ctx, a.actor)
	if err != nil {
		return a.report(err)
	}
	a.printf("\n%-5s %-20s %s\n", "ID", "USUARIO", "ROL")
	for _, u := range list {
		a.printf("%-5d %-20s %s\n", u.ID, u.Username, u.Role)
	}
	return nil
}

func (a *App) addUser(ctx context.Context) error {
	var in dto.CreateUserRequest
	var err error
	if in.Username, err = a.ask("Nuevo usuario: "); err != nil {
		return err
	}
	if in.Password, err = a.ask("Contraseña: "); err != nil {
		return err
	}
	if in.Role, err = a.ask("Rol (admin/user): "); err != nil {
		return err
	}
	u, err := a.deps.Users.Create(ctx, a.actor, in)
	if err != nil {
		return a.report(err)
	}
	a.printf("Usuario %s creado con rol %s.\n", u.Username, u.Role)
	return nil
}

func (a *App) changePassword(ctx context.Context) error {
	username, err := a.ask("Usuario: ")
	if err != nil {
		return err
	}
	password, err := a.ask("Nueva contraseña: ")
	if err != nil {
		return err
	}
	if err := a.deps.Users.ChangePassword(ctx, a.actor, username, password); err != nil {
		return a.report(err)
	}
	a.println("Contraseña actualizada.")
	return nil
}

func (a *App) deleteUser(ctx context.Context) error {
	username, err := a.ask("Usuario a eliminar: ")
	if err != nil {
		return err
	}
	ok, err := a.confirm("¿Eliminar al usuario " + username + "?")
	if err != nil || !ok {
		return err
	}
	if err := a.deps.Users.Delete(ctx, a.actor, username); err != nil {
		return a.report(err)
	}
	a.println("Usuario eliminado.")
	return nil
}
