package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// landingPageHTML is a bare page for exercising the auth endpoints by hand.
var landingPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Lighthouse</title>
<style>
body { font-family: Arial, sans-serif; max-width: 420px; margin: 40px auto; color: #222; }
form { margin-bottom: 28px; }
input { width: 100%; padding: 8px; margin: 4px 0; box-sizing: border-box; }
button { padding: 8px 16px; }
pre { background: #f4f4f4; padding: 8px; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Lighthouse</h1>
<form data-endpoint="/auth/login">
  <h2>Sign in</h2>
  <input name="username" placeholder="Username" required />
  <input name="password" type="password" placeholder="Password" required />
  <button type="submit">Sign in</button>
</form>
<form data-endpoint="/auth/signup">
  <h2>Create account</h2>
  <input name="firstName" placeholder="First name" required />
  <input name="lastName" placeholder="Last name" required />
  <input name="username" placeholder="Username" required />
  <input name="password" type="password" placeholder="Password" required />
  <button type="submit">Create account</button>
</form>
<form data-endpoint="/auth/password-reset/request">
  <h2>Forgot password</h2>
  <input name="username" placeholder="Username" required />
  <button type="submit">Send reset link</button>
</form>
<form data-endpoint="/auth/password-reset/consume">
  <h2>Choose a new password</h2>
  <input name="token" placeholder="Reset token" required />
  <input name="password" type="password" placeholder="New password" required />
  <button type="submit">Reset password</button>
</form>
<pre id="out"></pre>
<script>
const params = new URLSearchParams(window.location.search);
if (params.get('token')) {
  document.querySelector('[data-endpoint="/auth/password-reset/consume"] [name="token"]').value = params.get('token');
}
document.querySelectorAll('form').forEach(function (form) {
  form.addEventListener('submit', async function (event) {
    event.preventDefault();
    const response = await fetch(form.dataset.endpoint, {
      method: 'POST',
      credentials: 'include',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(Object.fromEntries(new FormData(form).entries()))
    });
    const data = await response.json();
    document.getElementById('out').textContent = response.status + ' ' + JSON.stringify(data, null, 2);
  });
});
</script>
</body>
</html>`

func RegisterPages(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, landingPageHTML)
	})
	e.GET("/reset-password", func(c echo.Context) error {
		return c.HTML(http.StatusOK, landingPageHTML)
	})
}
