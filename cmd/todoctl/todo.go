package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"

	"github.com/spf13/cobra"
)

// get
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

// create
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new todo",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var (
	createOwner       string
	createDescription string
	createPriority    string
	createStatus      string
	createOrder       int
)

// update
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply a JSON patch to a todo",
	Long: `Apply a JSON patch to a todo.

Only taskOrder, taskDescription, taskStatus and taskPriority may be set,
for example: --data '{"taskStatus":"CLOSED"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var (
	updateOwner string
	updateData  string
)

// delete
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteOwner string

func init() {
	rootCmd.AddCommand(getCmd, createCmd, updateCmd, deleteCmd)

	createCmd.Flags().StringVar(&createOwner, "owner", "", "Owner of the todo")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Task description")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "Priority (LOW, MODERATE, HIGH, URGENT)")
	createCmd.Flags().StringVarP(&createStatus, "status", "s", "", "Status (NEW, IN_PROGRESS, WAITING_TRANSMISSION, CLOSED, CANCELED)")
	createCmd.Flags().IntVar(&createOrder, "order", 0, "Task order")

	updateCmd.Flags().StringVar(&updateOwner, "owner", "", "Owner of the todo")
	updateCmd.Flags().StringVar(&updateData, "data", "", "JSON patch")

	deleteCmd.Flags().StringVar(&deleteOwner, "owner", "", "Owner of the todo")
}

func withTodos(cmd *cobra.Command, fn func(todos ports.TodoUseCases) (*entities.Todo, error)) error {
	todos, closeFn, err := openTodos(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	todo, err := fn(todos)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), todo)
}

func runGet(cmd *cobra.Command, args []string) error {
	return withTodos(cmd, func(todos ports.TodoUseCases) (*entities.Todo, error) {
		todo, err := todos.GetTodo(cmd.Context(), args[0])
		if err != nil {
			return nil, err
		}
		if todo == nil {
			return nil, fmt.Errorf("todo %s not found", args[0])
		}
		return todo, nil
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	input := &entities.CreateInput{TaskDescription: createDescription}
	if cmd.Flags().Changed("order") {
		order := createOrder
		input.TaskOrder = &order
	}
	if createPriority != "" {
		priority := entities.Priority(createPriority)
		input.TaskPriority = &priority
	}
	if createStatus != "" {
		status := entities.Status(createStatus)
		input.TaskStatus = &status
	}

	return withTodos(cmd, func(todos ports.TodoUseCases) (*entities.Todo, error) {
		return todos.CreateTodo(cmd.Context(), input, createOwner)
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var patch entities.UpdateInput
	decoder := json.NewDecoder(bytes.NewReader([]byte(updateData)))
	decoder.UseNumber()
	if err := decoder.Decode(&patch); err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	return withTodos(cmd, func(todos ports.TodoUseCases) (*entities.Todo, error) {
		return todos.UpdateTodo(cmd.Context(), args[0], patch, updateOwner)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withTodos(cmd, func(todos ports.TodoUseCases) (*entities.Todo, error) {
		return todos.DeleteTodo(cmd.Context(), args[0], deleteOwner)
	})
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
