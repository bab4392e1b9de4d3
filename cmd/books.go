package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"readinglist/internal/books"
	"readinglist/internal/cli"
)

var booksFlags cli.CommandFlags

// List flags
var (
	listStatus string
	listSearch string
	listSort   string
)

// Add flags
var (
	addTitle  string
	addAuthor string
	addStatus string
)

// newPrompter opens a prompter for missing values. It is a variable so
// tests can script the answers.
var newPrompter = func(cmd *cobra.Command) (cli.Prompter, func(), error) {
	p, err := cli.NewReadlinePrompter(os.Stdin, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

var booksCmd = &cobra.Command{
	Use:     "books",
	Aliases: []string{"book"},
	Short:   "List and manage books on your reading list",
	Long: `List and manage the books on your reading list.

Examples:
  readinglist books list                           # All books, sorted by title
  readinglist books list --status reading          # Only books being read
  readinglist books list --search herbert -o wide  # Include UUIDs
  readinglist books add --title Dune --author "Frank Herbert" --status to_read
  readinglist books update <uuid> read
  readinglist books delete <uuid>`,
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books",
	Args:  cobra.NoArgs,
	RunE:  runBooksList,
}

var booksGetCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE:  runBooksGet,
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	Long: `Add a book to the reading list.

Values not given as flags are asked for interactively.`,
	Args: cobra.NoArgs,
	RunE: runBooksAdd,
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <uuid> <status>",
	Short: "Change a book's status (read, to_read, reading)",
	Args:  cobra.ExactArgs(2),
	RunE:  runBooksUpdate,
}

var booksDeleteCmd = &cobra.Command{
	Use:     "delete <uuid>",
	Aliases: []string{"rm"},
	Short:   "Delete a book",
	Args:    cobra.ExactArgs(1),
	RunE:    runBooksDelete,
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksListCmd, booksGetCmd, booksAddCmd, booksUpdateCmd, booksDeleteCmd)

	cli.RegisterCommonFlags(booksCmd, &booksFlags)

	booksListCmd.Flags().StringVar(&listStatus, "status", "", "Only show books with this status (read, to_read, reading)")
	booksListCmd.Flags().StringVar(&listSearch, "search", "", "Only show books whose title or author contains this text")
	booksListCmd.Flags().StringVar(&listSort, "sort", string(books.SortByTitle), "Sort by title, author or status")

	booksAddCmd.Flags().StringVar(&addTitle, "title", "", "Book title")
	booksAddCmd.Flags().StringVar(&addAuthor, "author", "", "Book author")
	booksAddCmd.Flags().StringVar(&addStatus, "status", "", "Reading status (read, to_read, reading)")
}

func runBooksList(cmd *cobra.Command, args []string) error {
	opts := books.ListOptions{Search: listSearch}
	if listStatus != "" {
		status, err := books.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		opts.Status = status
	}
	sortBy, err := books.ParseSortField(listSort)
	if err != nil {
		return err
	}
	opts.SortBy = sortBy

	printer, err := cli.NewPrinter(cmd.OutOrStdout(), booksFlags)
	if err != nil {
		return err
	}

	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var list []books.Book
	err = cli.RunWithSpinner(cmd.ErrOrStderr(), booksFlags.Quiet, "Loading books", func() error {
		var err error
		list, err = application.Services().Books.List(ctx)
		return err
	})
	if err != nil {
		return translate(application, err)
	}

	return printer.PrintBooks(books.Filter(list, opts))
}

func runBooksGet(cmd *cobra.Command, args []string) error {
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), booksFlags)
	if err != nil {
		return err
	}

	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}

	book, err := application.Services().Books.Get(commandContext(cmd), args[0])
	if err != nil {
		return translate(application, err)
	}
	return printer.PrintBook(*book)
}

func runBooksAdd(cmd *cobra.Command, args []string) error {
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), booksFlags)
	if err != nil {
		return err
	}

	if addTitle == "" || addAuthor == "" || addStatus == "" {
		prompter, closePrompter, err := newPrompter(cmd)
		if err != nil {
			return err
		}
		defer closePrompter()

		if err := cli.PromptMissing(prompter, "Title", &addTitle, nil); err != nil {
			return err
		}
		if err := cli.PromptMissing(prompter, "Author", &addAuthor, nil); err != nil {
			return err
		}
		validStatus := func(s string) error {
			_, err := books.ParseStatus(s)
			return err
		}
		if err := cli.PromptMissing(prompter, "Status (read, to_read, reading)", &addStatus, validStatus); err != nil {
			return err
		}
	}

	status, err := books.ParseStatus(addStatus)
	if err != nil {
		return err
	}

	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}

	book, err := application.Services().Books.Add(commandContext(cmd), books.NewBook{
		Title:  addTitle,
		Author: addAuthor,
		Status: status,
	})
	if err != nil {
		return translate(application, err)
	}

	if !booksFlags.Quiet && booksFlags.Template == "" && booksFlags.OutputFormat == string(cli.OutputFormatTable) {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Added %q", book.Title)))
	}
	return printer.PrintBook(*book)
}

func runBooksUpdate(cmd *cobra.Command, args []string) error {
	status, err := books.ParseStatus(args[1])
	if err != nil {
		return err
	}

	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}

	book, err := application.Services().Books.UpdateStatus(commandContext(cmd), args[0], status)
	if err != nil {
		return translate(application, err)
	}
	if !booksFlags.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now %s", book.UUID, book.Status.Label())))
	}
	return nil
}

func runBooksDelete(cmd *cobra.Command, args []string) error {
	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}

	if err := application.Services().Books.Delete(commandContext(cmd), args[0]); err != nil {
		return translate(application, err)
	}
	if !booksFlags.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s", args[0])))
	}
	return nil
}
