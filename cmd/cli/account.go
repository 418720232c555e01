package main

import (
	"bufio"
	"fmt"
	"strings"

	"verisure/app"
	"verisure/domain/session"
	"verisure/domain/signup"

	"github.com/spf13/cobra"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var in app.LoginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session for this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			if in.Email == "" && in.Role == "" {
				if p, err := c.Auth.TakePrefill(cmd.Context()); err == nil && p != nil {
					in.Email, in.Role = p.Email, string(p.Role)
					fmt.Fprintf(cmd.OutOrStdout(), "Using the account just created: %s (%s)\n", p.Email, p.Role)
				}
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if in.Email == "" {
				if in.Email, err = readLine(reader, cmd.OutOrStdout(), session.EmailHint(session.ParseRole(in.Role))); err != nil {
					return err
				}
			}
			if in.Password == "" {
				if in.Password, err = readLine(reader, cmd.OutOrStdout(), "Password"); err != nil {
					return err
				}
			}

			res, err := c.Auth.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Home: %s\n", res.Session.Email, res.Session.Role, res.Home)
			if res.Session.NeedsApproval() {
				fmt.Fprintln(cmd.OutOrStdout(), "Your issuer account is awaiting approval. Run `verisure status --watch` to wait for it.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password (prompted when empty)")
	cmd.Flags().StringVar(&in.Role, "role", "", "Account type: holder, issuer, verifier or admin")
	return cmd
}

func newSignupCmd(flags *globalFlags) *cobra.Command {
	var req signup.Request
	var role string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a holder, issuer or verifier account",
		Long: `Create an account. Holders need --full-name and --country; issuers and
verifiers need the organization flags.

Example: verisure signup --role issuer --email admin@lbs.edu --password s3cret \
  --org-name "Lagos Business School" --org-type University \
  --contact-name Registrar --contact-email registrar@lbs.edu --country Nigeria`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			req.Role = session.Role(role)
			if req.PasswordConfirm == "" {
				req.PasswordConfirm = req.Password
			}
			form, err := req.Decode()
			if err != nil {
				return err
			}
			res, err := c.Auth.Signup(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(res.Message, " Redirecting to login…"))
			fmt.Fprintf(cmd.OutOrStdout(), "Log in with: verisure login --role %s --email %s\n", res.Prefill.Role, res.Prefill.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Account type: holder, issuer or verifier")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&req.PasswordConfirm, "password-confirm", "", "Repeat the password (defaults to --password)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "Holder full name")
	cmd.Flags().StringVar(&req.Country, "country", "", "Country")
	cmd.Flags().StringVar(&req.OrganizationName, "org-name", "", "Organization name")
	cmd.Flags().StringVar(&req.OrganizationType, "org-type", "", "Organization type")
	cmd.Flags().StringVar(&req.ContactName, "contact-name", "", "Contact person")
	cmd.Flags().StringVar(&req.ContactEmail, "contact-email", "", "Contact email")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := c.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := c.Auth.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if sess == nil {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\n", sess.Email, sess.Role)
			if sess.Role == session.RoleIssuer {
				fmt.Fprintf(out, "Issuer: %s, status %s\n", sess.IssuerName, sess.IssuerStatus)
			}
			for _, l := range session.NavLinks(sess.Role) {
				fmt.Fprintf(out, "%s: %s\n", l.Label, l.Href)
			}
			return nil
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the logged in issuer has been approved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			st, err := c.Approval.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !st.Locked {
				if st.Status != "" {
					fmt.Fprintln(out, st.Status)
				}
				fmt.Fprintln(out, "Issuance is unlocked.")
				return nil
			}
			fmt.Fprintln(out, st.Status)
			if !watch {
				return nil
			}

			fmt.Fprintln(out, "Waiting for approval...")
			if err := c.Approval.Run(cmd.Context()); err != nil {
				return err
			}
			final := c.Approval.State()
			if final.Locked {
				fmt.Fprintln(out, final.Status)
				return cmd.Context().Err()
			}
			fmt.Fprintln(out, final.Status)
			fmt.Fprintln(out, "Issuance is unlocked.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling until the issuer is approved")
	return cmd
}
