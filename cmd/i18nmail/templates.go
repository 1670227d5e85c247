package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/i18nmail/internal/app"
	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
)

func requireTenant(tenant string) error {
	if strings.TrimSpace(tenant) == "" {
		return fmt.Errorf("falta --tenant")
	}
	return nil
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Agrega al tenant los templates por defecto que falten",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				report, err := c.Manager.SeedDefaults(cmd.Context(), tenant)
				if err != nil {
					return err
				}
				printOut(g, report, func() {
					fmt.Printf("added=%d skipped=%d aborted=%v\n", len(report.Added), len(report.Skipped), report.Aborted)
					for _, n := range report.Added {
						fmt.Println("  +", n)
					}
				})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant domain")
	return cmd
}

func newTypesCmd(g *globalFlags) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Tipos de template (list|add|delete)",
	}
	cmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant domain")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista los tipos del tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				types, err := c.Manager.ListTemplateTypes(cmd.Context(), tenant)
				if err != nil {
					return err
				}
				printOut(g, types, func() {
					for _, t := range types {
						fmt.Println(t)
					}
				})
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <display name>",
		Short: "Crea un tipo de template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				if err := c.Manager.AddTemplateType(cmd.Context(), args[0], tenant); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <display name>",
		Short: "Borra un tipo y todas sus traducciones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				if err := c.Manager.DeleteTemplateType(cmd.Context(), args[0], tenant); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			})
		},
	})
	return cmd
}

func newTemplatesCmd(g *globalFlags) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Templates (list|get|put|delete|send)",
	}
	cmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant domain")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista todos los templates del tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				list, err := c.Manager.ListAllTemplates(cmd.Context(), tenant)
				if err != nil {
					return err
				}
				printOut(g, list, func() {
					for _, t := range list {
						fmt.Printf("%-28s %-8s %s\n", t.TemplateDisplayName, t.Locale, t.Subject)
					}
				})
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <type> <locale>",
		Short: "Muestra un template (con fallback al locale por defecto)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				t, err := c.Manager.GetTemplate(cmd.Context(), args[0], args[1], tenant)
				if err != nil {
					return err
				}
				printOut(g, t, func() {
					fmt.Printf("type:    %s\nlocale:  %s\nsubject: %s\n\n%s\n\n%s\n", t.TemplateDisplayName, t.Locale, t.Subject, t.Body, t.Footer)
				})
				return nil
			})
		},
	})

	var file string
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Guarda un template desde un archivo JSON (crea el tipo si no existe)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			if file == "" {
				return fmt.Errorf("falta --file")
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var t emailtemplate.EmailTemplate
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				if err := c.Manager.AddTemplate(cmd.Context(), &t, tenant); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			})
		},
	}
	putCmd.Flags().StringVar(&file, "file", "", "Archivo JSON con el template")
	cmd.AddCommand(putCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <type> <locale>",
		Short: "Borra una traducción",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				if err := c.Manager.DeleteTemplate(cmd.Context(), args[0], args[1], tenant); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			})
		},
	})

	var to string
	var vars map[string]string
	sendCmd := &cobra.Command{
		Use:   "send <type> <locale>",
		Short: "Renderiza y envía un template por SMTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			data := make(map[string]any, len(vars))
			for k, v := range vars {
				data[k] = v
			}
			return withContainer(cmd.Context(), g, func(c *app.Container) error {
				if err := c.Mailer.SendTemplate(cmd.Context(), tenant, args[0], args[1], to, data); err != nil {
					return err
				}
				fmt.Println("sent to", to)
				return nil
			})
		},
	}
	sendCmd.Flags().StringVar(&to, "to", "", "Destinatario")
	sendCmd.Flags().StringToStringVar(&vars, "var", nil, "Variables del template (ej: --var UserName=juan)")
	_ = sendCmd.MarkFlagRequired("to")
	cmd.AddCommand(sendCmd)

	return cmd
}
