// Package calc implements the expression engine of a scientific calculator.
//
// Expressions are what a calculator keypad produces: numbers, the operators
// + - * / ^, parentheses, the constant PI, and the functions sin, cos, tan,
// log, exp, and sqrt, each applied to a parenthesized argument. "2^3^2" is
// "2^(3^2)". Unary minus binds tighter than exponentiation, so "-2^2" is 4.
// log is the natural logarithm. By default, trigonometric functions take
// their arguments in degrees.
//
// Evaluate reports every failure as the single error ErrEvaluation, including
// results that are not finite numbers. The lower-level Validate, CheckBalance,
// Parse, and Expr.Eval return detailed errors instead.
//
// Evaluation never executes anything but arithmetic. Juxtaposed terms like
// "2(3)" or "2PI" are syntax errors; inserting the implied multiplication is
// the job of whatever builds the expression, e.g. package keypad.
package calc
