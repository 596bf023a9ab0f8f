package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/otcheredev/hms-console/internal/listctl"
	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and open the remembered screen or your dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("HMS_PASSWORD")
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				d, err := a.console.Login(ctx, username, password)
				if err != nil {
					return err
				}
				user, _ := a.console.Session.CurrentUser()
				fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Role)
				fmt.Println("Location:", d.Location)
				return nil
			})
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username")
	cmd.Flags().StringP("password", "p", "", "Password (defaults to $HMS_PASSWORD)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.console.Logout(ctx); err != nil {
					return err
				}
				fmt.Println("Signed out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				user, ok := a.console.Session.CurrentUser()
				if !ok {
					return apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "not signed in", nil)
				}
				return printJSON(user)
			})
		},
	}
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the screens available to your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				items := a.console.Menu()
				if len(items) == 0 {
					fmt.Println("Sign in to see the menu")
					return nil
				}
				for _, it := range items {
					fmt.Printf("%-16s %s\n", it.Label, it.Path)
				}
				return nil
			})
		},
	}
}

func navigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <location>",
		Short: "Check whether a screen may be opened",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				d, err := a.console.Navigate(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Println("State:", d.State)
				fmt.Println("Location:", a.console.Location())
				return nil
			})
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your role's dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				role, ok := a.console.Session.CurrentRole()
				if !ok {
					return apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "not signed in", nil)
				}
				if err := a.open(ctx, role.DashboardPath()); err != nil {
					return err
				}
				d, err := a.console.Dashboard(ctx)
				if err != nil {
					return err
				}
				return printJSON(d)
			})
		},
	}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "Page index, from 0")
	cmd.Flags().Int("size", models.DefaultPageSize, "Page size")
}

// showPage applies size and filter, moves to page and prints the result
func showPage[T any, F comparable](ctx context.Context, c *listctl.Controller[T, F], filter F, page, size int) error {
	if _, err := c.SetPageSize(ctx, size); err != nil {
		return err
	}
	state, err := c.SetFilter(ctx, filter)
	if err != nil {
		return err
	}
	if page > 0 {
		if state, err = c.SetPage(ctx, page); err != nil {
			return err
		}
	}
	p := state.Result
	fmt.Fprintf(os.Stderr, "page %d of %d, %d total\n", p.PageIndex+1, max(p.TotalPages(), 1), p.TotalCount)
	return printJSON(p.Items)
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse and register patients",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List or search patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/patients"); err != nil {
					return err
				}
				return showPage(ctx, a.console.Patients, models.PatientFilter{Query: query}, page, size)
			})
		},
	}
	listCmd.Flags().String("query", "", "Match name, patient code or phone")
	addPageFlags(listCmd)
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a patient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/patients/"+args[0]); err != nil {
					return err
				}
				p, err := a.console.API.Patients.Get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.PatientRequest
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")
			req.DateOfBirth, _ = cmd.Flags().GetString("dob")
			gender, _ := cmd.Flags().GetString("gender")
			req.Gender = models.Gender(strings.ToUpper(gender))
			req.Phone, _ = cmd.Flags().GetString("phone")
			req.Email, _ = cmd.Flags().GetString("email")
			req.BloodGroup, _ = cmd.Flags().GetString("blood-group")
			if fields := req.Validate(); len(fields) > 0 {
				return apperrors.NewValidationError("invalid patient", fields)
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/patients/new"); err != nil {
					return err
				}
				p, err := a.console.API.Patients.Create(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
	createCmd.Flags().String("first-name", "", "First name")
	createCmd.Flags().String("last-name", "", "Last name")
	createCmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD")
	createCmd.Flags().String("gender", "", "MALE, FEMALE or OTHER")
	createCmd.Flags().String("phone", "", "Phone number")
	createCmd.Flags().String("email", "", "Email")
	createCmd.Flags().String("blood-group", "", "Blood group")
	cmd.AddCommand(createCmd)
	return cmd
}

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Schedule and update appointments",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			doctorID, _ := cmd.Flags().GetInt64("doctor")
			patientID, _ := cmd.Flags().GetInt64("patient")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			filter := models.AppointmentFilter{
				Status:    models.AppointmentStatus(strings.ToUpper(status)),
				DoctorID:  doctorID,
				PatientID: patientID,
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/appointments"); err != nil {
					return err
				}
				return showPage(ctx, a.console.Visits, filter, page, size)
			})
		},
	}
	listCmd.Flags().String("status", "", "SCHEDULED, COMPLETED or CANCELLED")
	listCmd.Flags().Int64("doctor", 0, "Only this doctor's appointments")
	listCmd.Flags().Int64("patient", 0, "Only this patient's appointments")
	addPageFlags(listCmd)
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "List today's appointments in time order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/appointments"); err != nil {
					return err
				}
				appts, err := a.console.API.Appointments.Today(ctx)
				if err != nil {
					return err
				}
				return printJSON(appts)
			})
		},
	})

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.AppointmentRequest
			req.PatientID, _ = cmd.Flags().GetInt64("patient")
			req.DoctorID, _ = cmd.Flags().GetInt64("doctor")
			req.Reason, _ = cmd.Flags().GetString("reason")
			req.Notes, _ = cmd.Flags().GetString("notes")
			at, _ := cmd.Flags().GetString("at")
			if at != "" {
				t, err := time.ParseInLocation("2006-01-02T15:04", at, time.Local)
				if err != nil {
					return apperrors.NewValidationError("invalid appointment", map[string]string{
						"appointmentDate": "use YYYY-MM-DDTHH:MM",
					})
				}
				req.AppointmentDate = t
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/appointments/new"); err != nil {
					return err
				}
				appt, err := a.console.Appointments.Schedule(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(appt)
			})
		},
	}
	scheduleCmd.Flags().Int64("patient", 0, "Patient id")
	scheduleCmd.Flags().Int64("doctor", 0, "Doctor id")
	scheduleCmd.Flags().String("at", "", "Date and time, YYYY-MM-DDTHH:MM")
	scheduleCmd.Flags().String("reason", "", "Reason for the visit")
	scheduleCmd.Flags().String("notes", "", "Notes")
	cmd.AddCommand(scheduleCmd)

	for _, to := range []models.AppointmentStatus{models.AppointmentCompleted, models.AppointmentCancelled} {
		cmd.AddCommand(transitionCmd(to))
	}
	return cmd
}

func transitionCmd(to models.AppointmentStatus) *cobra.Command {
	use := "complete"
	if to == models.AppointmentCancelled {
		use = "cancel"
	}
	c := &cobra.Command{
		Use:   use + " <id>",
		Short: "Mark an appointment " + strings.ToLower(string(to)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/appointments"); err != nil {
					return err
				}
				appt, err := a.console.API.Appointments.Get(ctx, id)
				if err != nil {
					return err
				}
				updated, err := a.console.Appointments.Transition(ctx, appt, to, notes)
				if err != nil {
					return err
				}
				return printJSON(updated)
			})
		},
	}
	c.Flags().String("notes", "", "Notes to record with the change")
	return c
}

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse and write medical records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List medical records",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctorID, _ := cmd.Flags().GetInt64("doctor")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/medical-records"); err != nil {
					return err
				}
				return showPage(ctx, a.console.Records, models.MedicalRecordFilter{DoctorID: doctorID}, page, size)
			})
		},
	}
	listCmd.Flags().Int64("doctor", 0, "Only this doctor's records")
	addPageFlags(listCmd)
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "history <patient-id>",
		Short: "Show a patient's medical history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/medical-records"); err != nil {
					return err
				}
				history, err := a.console.API.MedicalRecords.PatientHistory(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(history)
			})
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a medical record as the signed-in doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.MedicalRecordRequest
			req.PatientID, _ = cmd.Flags().GetInt64("patient")
			req.Diagnosis, _ = cmd.Flags().GetString("diagnosis")
			req.Prescription, _ = cmd.Flags().GetString("prescription")
			req.TreatmentNotes, _ = cmd.Flags().GetString("notes")
			if appt, _ := cmd.Flags().GetInt64("appointment"); appt > 0 {
				req.AppointmentID = &appt
			}
			req.VisitDate = time.Now()
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/medical-records/new"); err != nil {
					return err
				}
				user, _ := a.console.Session.CurrentUser()
				req.DoctorID = user.ID
				if fields := req.Validate(); len(fields) > 0 {
					return apperrors.NewValidationError("invalid medical record", fields)
				}
				m, err := a.console.API.MedicalRecords.Create(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(m)
			})
		},
	}
	createCmd.Flags().Int64("patient", 0, "Patient id")
	createCmd.Flags().Int64("appointment", 0, "Appointment id")
	createCmd.Flags().String("diagnosis", "", "Diagnosis")
	createCmd.Flags().String("prescription", "", "Prescription")
	createCmd.Flags().String("notes", "", "Treatment notes")
	cmd.AddCommand(createCmd)
	return cmd
}

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Issue bills and record payments",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			patientID, _ := cmd.Flags().GetInt64("patient")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			filter := models.BillFilter{PatientID: patientID}
			if s := strings.ToUpper(status); s != "" && s != "ALL" {
				filter.Status = models.PaymentStatus(s)
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/billing"); err != nil {
					return err
				}
				return showPage(ctx, a.console.Bills, filter, page, size)
			})
		},
	}
	listCmd.Flags().String("status", "ALL", "ALL, PENDING, PARTIAL or PAID")
	listCmd.Flags().Int64("patient", 0, "Only this patient's bills")
	addPageFlags(listCmd)
	cmd.AddCommand(listCmd)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a bill",
		RunE: func(cmd *cobra.Command, args []string) error {
			patientID, _ := cmd.Flags().GetInt64("patient")
			raw, _ := cmd.Flags().GetStringArray("item")
			items, err := parseItems(raw)
			if err != nil {
				return err
			}
			req := models.BillRequest{PatientID: patientID, Items: items}
			if appt, _ := cmd.Flags().GetInt64("appointment"); appt > 0 {
				req.AppointmentID = &appt
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/billing/new"); err != nil {
					return err
				}
				b, err := a.console.Billing.CreateBill(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(b)
			})
		},
	}
	createCmd.Flags().Int64("patient", 0, "Patient id")
	createCmd.Flags().Int64("appointment", 0, "Appointment id")
	createCmd.Flags().StringArray("item", nil, "Line item as description=amount; repeat for more")
	cmd.AddCommand(createCmd)

	payCmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a payment against a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetFloat64("amount")
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/billing"); err != nil {
					return err
				}
				bill, err := a.console.API.Bills.Get(ctx, id)
				if err != nil {
					return err
				}
				updated, err := a.console.Billing.RecordPayment(ctx, bill, amount)
				if err != nil {
					return err
				}
				return printJSON(updated)
			})
		},
	}
	payCmd.Flags().Float64("amount", 0, "Amount received")
	cmd.AddCommand(payCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "revenue",
		Short: "Show collected and outstanding totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/reports"); err != nil {
					return err
				}
				stats, err := a.console.API.Bills.RevenueStats(ctx)
				if err != nil {
					return err
				}
				return printJSON(stats)
			})
		},
	})
	return cmd
}

func doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List doctors available for scheduling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.open(ctx, "/appointments/new"); err != nil {
					return err
				}
				doctors, err := a.console.API.Users.ByRole(ctx, models.RoleDoctor)
				if err != nil {
					return err
				}
				return printJSON(doctors)
			})
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				if err := a.console.API.Auth.Health(ctx); err != nil {
					return err
				}
				fmt.Println("OK", a.cfg.API.BaseURL)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

// parseItems reads description=amount pairs
func parseItems(raw []string) ([]models.BillItem, error) {
	items := make([]models.BillItem, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, "=")
		if i <= 0 {
			return nil, apperrors.NewValidationError("invalid item", map[string]string{"items": "use description=amount"})
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(r[i+1:]), 64)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid item", map[string]string{"items": "amount must be a number"})
		}
		items = append(items, models.BillItem{Description: strings.TrimSpace(r[:i]), Amount: amount})
	}
	return items, nil
}
